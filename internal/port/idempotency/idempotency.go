package idempotency

import (
	"context"
	"time"
)

// Result is a stored HTTP response replayed for a repeated Idempotency-Key.
type Result struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// Store remembers the first response produced for an idempotency key.
type Store interface {
	// Check returns the stored result and whether the key was seen.
	Check(ctx context.Context, key string) (Result, bool, error)
	// Save records res for key. A key that already exists is left unchanged.
	Save(ctx context.Context, key string, res Result, ttl time.Duration) error
}
