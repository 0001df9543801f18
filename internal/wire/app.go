package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alanyang/agentpages/internal/adapter/cardhttp"
	"github.com/alanyang/agentpages/internal/config"
	"github.com/alanyang/agentpages/internal/telemetry"

	chatsvc "github.com/alanyang/agentpages/internal/service/chat"
	crawlsvc "github.com/alanyang/agentpages/internal/service/crawler"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"

	"github.com/alanyang/agentpages/internal/transport"
	mcptransport "github.com/alanyang/agentpages/internal/transport/mcp"
)

const serviceName = "agentpages"

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Server    *http.Server
	Directory *directorysvc.Service
	MCPServer *mcptransport.Server
	Stores    *Stores

	shutdownTelemetry func(context.Context) error
}

// Close flushes traces and releases store connections. Call it after the
// HTTP server has shut down.
func (a *App) Close(ctx context.Context) {
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			slog.Error("telemetry shutdown error", "error", err)
		}
	}
	a.Stores.Close()
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Server) (*App, error) {
	// ── Tracing ──────────────────────────────────────────────────────────────
	shutdownTelemetry, err := telemetry.Setup(ctx, serviceName, cfg.Version, cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setting up telemetry: %w", err)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	stores, err := OpenStores(ctx, StoreConfig{
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		Migrate:     cfg.Migrate,
		MaxConns:    cfg.DBMaxConns,
		AppName:     serviceName,
	})
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, err
	}
	fetcher := cardhttp.New(cfg.CardTimeout)

	// ── Services ─────────────────────────────────────────────────────────────
	dirSvc := directorysvc.NewService(stores.Agents, stores.EventBus, stores.Cache, fetcher, cfg.StatsTTL)
	chat := chatsvc.NewService(dirSvc, cfg.PublicBaseURL)

	reg := mcptransport.NewSessionRegistry()
	mcpServer := mcptransport.New(reg, dirSvc, cfg.Version)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, transport.Options{
		Directory:      dirSvc,
		Chat:           chat,
		EventBus:       stores.EventBus,
		Idempotency:    stores.Idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		AdminSecret:    cfg.AdminSecret,
		BaseURL:        cfg.PublicBaseURL,
		Version:        cfg.Version,
		MCP:            mcpServer.Handler(),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Port, "store", stores.Backend, "redis", cfg.RedisURL != "")

	app := &App{
		Server:            server,
		Directory:         dirSvc,
		MCPServer:         mcpServer,
		Stores:            stores,
		shutdownTelemetry: shutdownTelemetry,
	}

	// ── Event listeners ──────────────────────────────────────────────────────
	startListeners(ctx, stores.EventBus, dirSvc, reg)

	return app, nil
}

// Crawl bundles a crawler with the stores it runs against. Directory is set
// only when the stores are durable, since registering into a throwaway
// in-memory store would be lost on exit.
type Crawl struct {
	Crawler   *crawlsvc.Crawler
	Directory *directorysvc.Service
	Stores    *Stores
}

// BuildCrawler wires the crawler CLI. seeds and workers come from flags
// layered over cfg by the caller.
func BuildCrawler(ctx context.Context, cfg config.Crawler, seeds crawlsvc.Seeds) (*Crawl, error) {
	stores, err := OpenStores(ctx, StoreConfig{
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		Migrate:     cfg.Migrate,
		AppName:     serviceName + "-crawler",
	})
	if err != nil {
		return nil, err
	}

	fetcher := cardhttp.New(cfg.Timeout)
	c := crawlsvc.New(fetcher, fetcher, stores.Locker, stores.EventBus, seeds, crawlsvc.Config{
		Workers:   cfg.Workers,
		Timeout:   cfg.Timeout,
		StatePath: cfg.StatePath,
	})

	out := &Crawl{Crawler: c, Stores: stores}
	if stores.Backend != "memory" {
		out.Directory = directorysvc.NewService(stores.Agents, stores.EventBus, stores.Cache, fetcher, 0)
	}
	return out, nil
}
