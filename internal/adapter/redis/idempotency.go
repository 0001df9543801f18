package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	portidempotency "github.com/alanyang/agentpages/internal/port/idempotency"
)

var _ portidempotency.Store = (*IdempotencyStore)(nil)

const idempotencyPrefix = "agentpages:idem:"

type IdempotencyStore struct {
	rdb goredis.Cmdable
}

func NewIdempotencyStore(rdb goredis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

func (s *IdempotencyStore) Check(ctx context.Context, key string) (portidempotency.Result, bool, error) {
	b, err := s.rdb.Get(ctx, idempotencyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return portidempotency.Result{}, false, nil
	}
	if err != nil {
		return portidempotency.Result{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	var res portidempotency.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return portidempotency.Result{}, false, fmt.Errorf("decoding idempotency result: %w", err)
	}
	return res, true, nil
}

// Save uses SET NX so the first stored response wins.
func (s *IdempotencyStore) Save(ctx context.Context, key string, res portidempotency.Result, ttl time.Duration) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding idempotency result: %w", err)
	}
	if err := s.rdb.SetNX(ctx, idempotencyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
