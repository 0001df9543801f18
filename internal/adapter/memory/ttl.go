package memory

import (
	"sync"
	"time"
)

// sweepEvery is how many writes pass between sweeps of expired entries.
const sweepEvery = 256

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlMap is a mutex-guarded map whose entries expire. Expired entries read as
// absent and are swept periodically on write so the map stays bounded by live keys.
type ttlMap[V any] struct {
	mu      sync.Mutex
	entries map[string]ttlEntry[V]
	writes  int
	now     func() time.Time
}

func newTTLMap[V any]() *ttlMap[V] {
	return &ttlMap[V]{entries: make(map[string]ttlEntry[V]), now: time.Now}
}

func (m *ttlMap[V]) get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// set stores value. With keepLive, an unexpired entry is left untouched and
// set reports false.
func (m *ttlMap[V]) set(key string, value V, ttl time.Duration, keepLive bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if keepLive {
		if e, ok := m.entries[key]; ok && !now.After(e.expiresAt) {
			return false
		}
	}
	m.entries[key] = ttlEntry[V]{value: value, expiresAt: now.Add(ttl)}

	m.writes++
	if m.writes%sweepEvery == 0 {
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}
	return true
}

func (m *ttlMap[V]) delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *ttlMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
