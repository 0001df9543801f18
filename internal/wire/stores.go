package wire

import (
	"context"
	"fmt"
	"log/slog"

	pgdb "github.com/alanyang/agentpages/internal/adapter/postgres"
	pgagent "github.com/alanyang/agentpages/internal/adapter/postgres/agent"
	pgeventbus "github.com/alanyang/agentpages/internal/adapter/postgres/eventbus"
	pgidem "github.com/alanyang/agentpages/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/agentpages/internal/adapter/postgres/locker"
	"github.com/alanyang/agentpages/internal/adapter/postgres/migrations"
	redisadapter "github.com/alanyang/agentpages/internal/adapter/redis"

	"github.com/alanyang/agentpages/internal/adapter/memory"
	portagent "github.com/alanyang/agentpages/internal/port/agent"
	portcache "github.com/alanyang/agentpages/internal/port/cache"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
	portidem "github.com/alanyang/agentpages/internal/port/idempotency"
	portlocker "github.com/alanyang/agentpages/internal/port/locker"
)

// StoreConfig selects the backing stores. Empty URLs fall back to in-process
// implementations.
type StoreConfig struct {
	DatabaseURL string
	RedisURL    string
	Migrate     bool
	MaxConns    int32
	// AppName labels the Postgres session.
	AppName string
}

// Stores bundles every persistence port. Close releases pools and clients.
type Stores struct {
	Agents      portagent.Repository
	EventBus    porteventbus.EventBus
	Locker      portlocker.AdvisoryLocker
	Cache       portcache.Cache
	Idempotency portidem.Store
	Backend     string

	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects Postgres when DatabaseURL is set (applying migrations
// when Migrate is true) and Redis when RedisURL is set. With Redis the stats
// cache and idempotency replay live there; otherwise the cache is in-process
// and idempotency follows the agent store.
func OpenStores(ctx context.Context, cfg StoreConfig) (*Stores, error) {
	s := &Stores{}

	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		s.Backend = "memory"
		s.Agents = memory.NewAgentRepository()
		s.EventBus = memory.NewEventBus()
		s.Locker = memory.NewLocker()
		s.Idempotency = memory.NewIdempotencyStore()
	} else {
		pool, err := pgdb.Connect(ctx, cfg.DatabaseURL, pgdb.PoolOptions{MaxConns: cfg.MaxConns, AppName: cfg.AppName})
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		s.closers = append(s.closers, pool.Close)

		if cfg.Migrate {
			if err := migrations.Apply(ctx, pool); err != nil {
				s.Close()
				return nil, fmt.Errorf("applying migrations: %w", err)
			}
		}

		s.Backend = "postgres"
		s.Agents = pgagent.New(pool)
		s.EventBus = pgeventbus.New(pool)
		s.Locker = pglocker.New(pool)
		s.Idempotency = pgidem.New(pool)
	}

	if cfg.RedisURL == "" {
		s.Cache = memory.NewCache()
		return s, nil
	}

	rdb, err := redisadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	s.closers = append(s.closers, func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	})
	s.Cache = redisadapter.NewCache(rdb)
	s.Idempotency = redisadapter.NewIdempotencyStore(rdb)
	return s, nil
}
