package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/adapter/memory"
	"github.com/alanyang/agentpages/internal/domain/event"
	"github.com/alanyang/agentpages/internal/transport/ws"
)

func init() { gin.SetMode(gin.TestMode) }

func TestHub_ForwardsBusEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewEventBus()
	hub := ws.NewHub()
	hub.Subscribe(ctx, bus, event.Channels)

	r := gin.New()
	hub.Register(r.Group("/api/ws"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	id := uuid.New()
	require.NoError(t, bus.Publish(ctx, event.New(event.TypeAgentRegistered, id, "Weather")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got event.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, event.TypeAgentRegistered, got.Type)
	assert.Equal(t, id, got.EntityID)
	assert.Equal(t, "Weather", got.Name)

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeCrawlFinished, uuid.Nil, "known")))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, event.TypeCrawlFinished, got.Type)
}

func TestHub_FiltersByType(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewEventBus()
	hub := ws.NewHub()
	hub.Subscribe(ctx, bus, event.Channels)

	r := gin.New()
	hub.Register(r.Group("/api/ws"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?types=crawl_finished,bogus"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeAgentRegistered, uuid.New(), "skipped")))
	require.NoError(t, bus.Publish(ctx, event.New(event.TypeCrawlFinished, uuid.Nil, "domains")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got event.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, event.TypeCrawlFinished, got.Type, "agent events are filtered out")
	assert.Equal(t, "domains", got.Name)
}
