package locker

import (
	"context"
	"errors"
)

// Lock keys. One key per singleton job.
const (
	KeyCrawl int64 = 0x61676e7463726177
)

// ErrLocked is returned by TryWithLock when another holder has the key.
var ErrLocked = errors.New("lock held elsewhere")

// AdvisoryLocker serialises critical sections across processes sharing a store.
// [SRP] Locking only; callers own what the section does.
// With Postgres both methods hold a session advisory lock on one connection for the
// duration of fn.
type AdvisoryLocker interface {
	// WithLock blocks until key is free or ctx is done.
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
	// TryWithLock runs fn only if key is free right now, else returns ErrLocked.
	TryWithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
