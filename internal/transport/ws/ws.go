package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/alanyang/agentpages/internal/domain/event"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// filter is the set of event types a client asked for; nil means all.
type filter map[event.Type]bool

func (f filter) allows(t event.Type) bool { return f == nil || f[t] }

// parseFilter reads ?types=agent_registered,crawl_finished. Unknown names are
// ignored; a list with no known names means all.
func parseFilter(raw string) filter {
	var f filter
	for _, name := range strings.Split(raw, ",") {
		t := event.Type(strings.TrimSpace(name))
		if event.ChannelFor(t) == "" {
			continue
		}
		if f == nil {
			f = filter{}
		}
		f[t] = true
	}
	return f
}

// Hub fans directory events out to connected browsers and agents.
type Hub struct {
	clients map[*websocket.Conn]filter
	mu      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]filter),
	}
}

func (h *Hub) Register(rg *gin.RouterGroup) {
	rg.GET("", h.handleWS)
}

// Subscribe forwards every event on channels to connected clients until ctx
// is done. Failed subscriptions are logged and skipped.
func (h *Hub) Subscribe(ctx context.Context, bus porteventbus.EventBus, channels []event.Channel) {
	for _, ch := range channels {
		if _, err := bus.Subscribe(ctx, ch, func(_ context.Context, e event.Event) {
			h.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", ch, "error", err)
		}
	}
}

func (h *Hub) handleWS(c *gin.Context) {
	f := parseFilter(c.Query("types"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = f
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// The feed is one-way; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast writes e to every client whose filter allows it. Writes are
// serialised because a websocket connection supports one concurrent writer.
func (h *Hub) Broadcast(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("websocket broadcast marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, f := range h.clients {
		if !f.allows(e.Type) {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("websocket write failed", "type", e.Type, "error", err)
		}
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
