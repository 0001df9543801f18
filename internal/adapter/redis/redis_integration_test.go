//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/alanyang/agentpages/internal/adapter/redis"
	portcache "github.com/alanyang/agentpages/internal/port/cache"
	portidempotency "github.com/alanyang/agentpages/internal/port/idempotency"
)

func setupRedis(t *testing.T) *redisadapter.Cache {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}
	rdb, err := redisadapter.Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return redisadapter.NewCache(rdb)
}

func TestCache_RoundTrip(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()
	key := "test-" + uuid.New().String()

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, portcache.ErrMiss)

	require.NoError(t, c.Set(ctx, key, []byte(`{"totalAgents":1}`), time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalAgents":1}`, string(got))

	require.NoError(t, c.Invalidate(ctx, key))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, portcache.ErrMiss)
}

func TestIdempotencyStore_FirstWriteWins(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}
	ctx := context.Background()
	rdb, err := redisadapter.Connect(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	s := redisadapter.NewIdempotencyStore(rdb)
	key := "test-" + uuid.New().String()

	require.NoError(t, s.Save(ctx, key, portidempotency.Result{Status: 201, Body: []byte("a")}, time.Minute))
	require.NoError(t, s.Save(ctx, key, portidempotency.Result{Status: 500, Body: []byte("b")}, time.Minute))

	res, ok, err := s.Check(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 201, res.Status)
	assert.Equal(t, "a", string(res.Body))
}
