package agent

import (
	"context"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
)

// Repository manages directory listings.
// [DIP] service/directory depends on this interface, not on a concrete storage.
// [LSP] Postgres and in-memory implementations are interchangeable.
type Repository interface {
	// List returns listings matching q in q.Order(), paginated by q.Limit/q.Offset.
	List(ctx context.Context, q domainagent.Query) ([]domainagent.Listing, error)
	// All returns every listing, unordered. Used for stats.
	All(ctx context.Context) ([]domainagent.Listing, error)

	// GetByName is an exact, case-sensitive lookup. Returns domainagent.ErrNotFound.
	GetByName(ctx context.Context, name string) (domainagent.Listing, error)
	// FindByNameFold is a case-insensitive lookup. Returns domainagent.ErrNotFound.
	FindByNameFold(ctx context.Context, name string) (domainagent.Listing, error)

	// Upsert inserts l, or replaces the row with the same name keeping its id and
	// created_at. created reports whether a new row was inserted.
	Upsert(ctx context.Context, l domainagent.Listing) (saved domainagent.Listing, created bool, err error)
	// DeleteByName reports whether a row was removed.
	DeleteByName(ctx context.Context, name string) (bool, error)
}
