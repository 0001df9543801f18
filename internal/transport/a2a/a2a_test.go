package a2a_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/adapter/memory"
	"github.com/alanyang/agentpages/internal/domain/a2a"
	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	chatsvc "github.com/alanyang/agentpages/internal/service/chat"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"
	transporta2a "github.com/alanyang/agentpages/internal/transport/a2a"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repo := memory.NewAgentRepository()
	reg := domainagent.Registration{Name: "Weather Bot", Description: "Daily forecasts", URL: "https://weather.dev"}.Normalize()
	repo.Seed(reg.Apply(nil, time.Now().UTC()))

	dir := directorysvc.NewService(repo, memory.NewEventBus(), memory.NewCache(), nil, time.Minute)
	r := gin.New()
	transporta2a.Register(r.Group("/api/a2a"), chatsvc.NewService(dir, "https://agentpages.dev"))
	transporta2a.RegisterCard(r, "https://agentpages.dev", "1.0.0")
	return r
}

func post(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, a2a.Response) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "/api/a2a", strings.NewReader(body))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp a2a.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRPC_Errors(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		body   string
		code   int
		wantID string
	}{
		{"malformed json", `{"jsonrpc":`, a2a.CodeParseError, "null"},
		{"null body", `null`, a2a.CodeParseError, "null"},
		{"trailing garbage", `{"jsonrpc":"2.0","id":7,"method":"message/send"} junk`, a2a.CodeParseError, "null"},
		{"second object", `{"jsonrpc":"2.0","id":7,"method":"tasks/get"}{}`, a2a.CodeParseError, "null"},
		{"array body", `[1,2]`, a2a.CodeParseError, "null"},
		{"unknown method", `{"jsonrpc":"2.0","id":7,"method":"tasks/get"}`, a2a.CodeMethodNotFound, "7"},
		{"no params", `{"jsonrpc":"2.0","id":"a","method":"message/send"}`, a2a.CodeInvalidParams, `"a"`},
		{"no parts", `{"jsonrpc":"2.0","id":"a","method":"message/send","params":{"message":{"role":"user","parts":[]}}}`, a2a.CodeInvalidParams, `"a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := post(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.wantID, string(resp.ID))
			assert.Nil(t, resp.Result)
		})
	}
}

func TestRPC_MessageSend(t *testing.T) {
	r := newRouter(t)

	w, resp := post(t, r, `{"jsonrpc":"2.0","id":1,"method":"message/send","params":{"message":{"role":"user","parts":[{"type":"text","text":"find weather agents"}]}}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "1", string(resp.ID))
	assert.Equal(t, a2a.RoleAgent, resp.Result.Message.Role)
	require.Len(t, resp.Result.Message.Parts, 1)
	assert.Contains(t, resp.Result.Message.Parts[0].Text, "Found 1 agent(s):")
	assert.Contains(t, resp.Result.Message.Parts[0].Text, "**Weather Bot**")
}

func TestWellKnownCard(t *testing.T) {
	r := newRouter(t)

	for _, p := range a2a.WellKnownPaths {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, p, nil)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, p)
		var card a2a.AgentCard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
		assert.True(t, card.Valid())
		assert.Equal(t, "https://agentpages.dev", card.URL)
	}
}
