package memory

import (
	"bytes"
	"context"
	"time"

	portcache "github.com/alanyang/agentpages/internal/port/cache"
)

var _ portcache.Cache = (*Cache)(nil)

// Cache is the in-process stand-in for the Redis cache. Values are copied in
// and out so callers never share a buffer with the store.
type Cache struct {
	m *ttlMap[[]byte]
}

func NewCache() *Cache {
	return &Cache{m: newTTLMap[[]byte]()}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.m.get(key)
	if !ok {
		return nil, portcache.ErrMiss
	}
	return bytes.Clone(v), nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.m.set(key, bytes.Clone(value), ttl, false)
	return nil
}

func (c *Cache) Invalidate(_ context.Context, key string) error {
	c.m.delete(key)
	return nil
}
