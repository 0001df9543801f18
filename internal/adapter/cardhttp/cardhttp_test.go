package cardhttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/adapter/cardhttp"
	portcardfetch "github.com/alanyang/agentpages/internal/port/cardfetch"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/agent.json":
			assert.Contains(t, r.Header.Get("User-Agent"), "AgentPages")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"Helper","description":"helps","protocolVersion":"0.3.0"}`))
		case "/garbage":
			w.Write([]byte(`<html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := cardhttp.New(2 * time.Second)
	ctx := context.Background()

	card, err := f.Fetch(ctx, srv.URL+"/.well-known/agent.json")
	require.NoError(t, err)
	assert.Equal(t, "Helper", card.Name)
	assert.True(t, card.Valid())

	_, err = f.Fetch(ctx, srv.URL+"/missing")
	assert.ErrorIs(t, err, portcardfetch.ErrUpstream)

	_, err = f.Fetch(ctx, srv.URL+"/garbage")
	require.Error(t, err)
	assert.NotErrorIs(t, err, portcardfetch.ErrUpstream)
}

func TestFetch_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	f := cardhttp.New(50 * time.Millisecond)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, portcardfetch.ErrUpstream)
}

func TestFetchIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/array":
			w.Write([]byte(`[{"url":"https://a.dev/"},{"url":"ftp://b.dev"},{"name":"no url"},{"url":" https://c.dev "}]`))
		case "/wrapped":
			w.Write([]byte(`{"agents":[{"url":"https://d.dev"}]}`))
		case "/bad":
			w.Write([]byte(`nope`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := cardhttp.New(2 * time.Second)
	ctx := context.Background()

	urls, err := f.FetchIndex(ctx, srv.URL+"/array")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.dev", "https://c.dev"}, urls)

	urls, err = f.FetchIndex(ctx, srv.URL+"/wrapped")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://d.dev"}, urls)

	_, err = f.FetchIndex(ctx, srv.URL+"/bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, portcardfetch.ErrUpstream)

	_, err = f.FetchIndex(ctx, srv.URL+"/down")
	assert.ErrorIs(t, err, portcardfetch.ErrUpstream)
}
