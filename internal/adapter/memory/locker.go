package memory

import (
	"context"
	"sync"

	portlocker "github.com/alanyang/agentpages/internal/port/locker"
)

var _ portlocker.AdvisoryLocker = (*Locker)(nil)

// Locker serialises critical sections within one process, one semaphore per key.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]chan struct{}
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[int64]chan struct{})}
}

func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	sem := l.sem(key)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-sem }()
	return fn(ctx)
}

func (l *Locker) TryWithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	sem := l.sem(key)
	select {
	case sem <- struct{}{}:
	default:
		return portlocker.ErrLocked
	}
	defer func() { <-sem }()
	return fn(ctx)
}

func (l *Locker) sem(key int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.locks[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.locks[key] = s
	}
	return s
}
