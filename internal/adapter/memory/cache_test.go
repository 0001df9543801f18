package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portcache "github.com/alanyang/agentpages/internal/port/cache"
)

func TestCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	_, err := c.Get(ctx, "stats")
	assert.ErrorIs(t, err, portcache.ErrMiss)

	require.NoError(t, c.Set(ctx, "stats", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "stats")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Invalidate(ctx, "stats"))
	_, err = c.Get(ctx, "stats")
	assert.ErrorIs(t, err, portcache.ErrMiss)
}

func TestCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestTTLMap_SweepsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newTTLMap[int]()
	m.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		m.set(fmt.Sprint("old", i), i, time.Second, false)
	}
	now = now.Add(time.Minute)
	m.set("fresh", 1, time.Hour, false)

	assert.Equal(t, 1, m.len())
	v, ok := m.get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache()
	c.m.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "stats", []byte("v"), 30*time.Second))

	now = now.Add(29 * time.Second)
	_, err := c.Get(ctx, "stats")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "stats")
	assert.ErrorIs(t, err, portcache.ErrMiss)
}

func TestIdempotencyStore_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewIdempotencyStore()
	s.m.now = func() time.Time { return now }

	_, ok, err := s.Check(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "k", resultOf(201, "first"), time.Hour))
	require.NoError(t, s.Save(ctx, "k", resultOf(500, "second"), time.Hour))

	res, ok, err := s.Check(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 201, res.Status)
	assert.Equal(t, "first", string(res.Body))

	now = now.Add(2 * time.Hour)
	_, ok, err = s.Check(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
