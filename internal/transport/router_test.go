package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/adapter/memory"
	chatsvc "github.com/alanyang/agentpages/internal/service/chat"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"
	"github.com/alanyang/agentpages/internal/transport"
)

func newRouter(t *testing.T, mcp http.Handler) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bus := memory.NewEventBus()
	dir := directorysvc.NewService(memory.NewAgentRepository(), bus, memory.NewCache(), nil, time.Minute)
	return transport.NewRouter(ctx, transport.Options{
		Directory:      dir,
		Chat:           chatsvc.NewService(dir, "https://agentpages.dev"),
		EventBus:       bus,
		Idempotency:    memory.NewIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		AdminSecret:    "s3cret",
		BaseURL:        "https://agentpages.dev",
		Version:        "1.0.0",
		MCP:            mcp,
	})
}

func serve(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := newRouter(t, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/.well-known/agent.json", http.StatusOK},
		{http.MethodGet, "/.well-known/agent-card.json", http.StatusOK},
		{http.MethodGet, "/api/agents", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodGet, "/api/highlights", http.StatusOK},
		{http.MethodGet, "/api/agents/nobody", http.StatusNotFound},
		{http.MethodGet, "/mcp", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(t, r, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_MountsMCP(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r := newRouter(t, mcp)

	w := serve(t, r, http.MethodPost, "/mcp", "{}", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newRouter(t, nil)

	w := serve(t, r, http.MethodOptions, "/api/agents/alpha", "", map[string]string{
		"Origin":                         "https://example.com",
		"Access-Control-Request-Method":  "DELETE",
		"Access-Control-Request-Headers": "X-Admin-Secret",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-admin-secret")
}

func TestRouter_IdempotentRegister(t *testing.T) {
	r := newRouter(t, nil)
	body := `{"name":"Weather","description":"Forecasts","url":"https://weather.dev"}`
	key := map[string]string{"Idempotency-Key": "abc"}

	first := serve(t, r, http.MethodPost, "/api/agents", body, key)
	require.Equal(t, http.StatusCreated, first.Code)

	// A different body under the same key still replays the first response.
	second := serve(t, r, http.MethodPost, "/api/agents", `{"name":"Other","description":"x","url":"https://x.dev"}`, key)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := serve(t, r, http.MethodGet, "/api/agents/Other", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_IdempotencyStoresClientErrors(t *testing.T) {
	r := newRouter(t, nil)
	key := map[string]string{"Idempotency-Key": "bad"}

	w := serve(t, r, http.MethodPost, "/api/agents", `{"name":"x"}`, key)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// 4xx responses are stored too, so a corrected retry needs a new key.
	w = serve(t, r, http.MethodPost, "/api/agents", `{"name":"x","description":"y","url":"https://x.dev"}`, key)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
