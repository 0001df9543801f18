package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/agentpages/internal/domain/event"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
	portidem "github.com/alanyang/agentpages/internal/port/idempotency"
	chatsvc "github.com/alanyang/agentpages/internal/service/chat"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"

	a2ahandler "github.com/alanyang/agentpages/internal/transport/a2a"
	agenthandler "github.com/alanyang/agentpages/internal/transport/agent"
	wshandler "github.com/alanyang/agentpages/internal/transport/ws"
)

// Options carries the HTTP surface's collaborators and settings.
type Options struct {
	Directory      *directorysvc.Service
	Chat           *chatsvc.Service
	EventBus       porteventbus.EventBus
	Idempotency    portidem.Store
	IdempotencyTTL time.Duration
	AdminSecret    string
	BaseURL        string
	Version        string
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

func NewRouter(ctx context.Context, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(TracingMiddleware())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	r.Use(IdempotencyMiddleware(opts.Idempotency, opts.IdempotencyTTL))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a2ahandler.RegisterCard(r, opts.BaseURL, opts.Version)

	api := r.Group("/api")

	agenthandler.Register(api.Group("/agents"), opts.Directory, opts.AdminSecret)
	agenthandler.RegisterStats(api, opts.Directory)
	a2ahandler.Register(api.Group("/a2a"), opts.Chat)

	// One subscription per channel; event.Type in the payload lets the client filter.
	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))
	hub.Subscribe(ctx, opts.EventBus, event.Channels)

	if opts.MCP != nil {
		r.Any("/mcp", gin.WrapH(opts.MCP))
	}

	return r
}
