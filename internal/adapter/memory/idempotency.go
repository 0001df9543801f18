package memory

import (
	"context"
	"time"

	portidempotency "github.com/alanyang/agentpages/internal/port/idempotency"
)

var _ portidempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps replayable responses in process. The first saved
// response for a key wins until it expires.
type IdempotencyStore struct {
	m *ttlMap[portidempotency.Result]
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{m: newTTLMap[portidempotency.Result]()}
}

func (s *IdempotencyStore) Check(_ context.Context, key string) (portidempotency.Result, bool, error) {
	res, ok := s.m.get(key)
	return res, ok, nil
}

func (s *IdempotencyStore) Save(_ context.Context, key string, res portidempotency.Result, ttl time.Duration) error {
	s.m.set(key, res, ttl, true)
	return nil
}
