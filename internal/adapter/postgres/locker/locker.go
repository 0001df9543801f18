package locker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	portlocker "github.com/alanyang/agentpages/internal/port/locker"
)

var _ portlocker.AdvisoryLocker = (*Locker)(nil)

// Locker takes Postgres session advisory locks. pg_advisory_lock is
// session-level, so lock and unlock must run on the same acquired connection.
type Locker struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Locker {
	return &Locker{pool: pool}
}

func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	return l.run(ctx, key, false, fn)
}

// TryWithLock returns portlocker.ErrLocked when another session, typically a
// crawler in a different process, holds key.
func (l *Locker) TryWithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	return l.run(ctx, key, true, fn)
}

func (l *Locker) run(ctx context.Context, key int64, try bool, fn func(ctx context.Context) error) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for advisory lock: %w", err)
	}
	defer conn.Release()

	if try {
		var ok bool
		if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok); err != nil {
			return fmt.Errorf("try advisory lock: %w", err)
		}
		if !ok {
			return portlocker.ErrLocked
		}
	} else if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", key); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	// Background so the unlock still runs when ctx was cancelled inside fn.
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key) //nolint:errcheck

	return fn(ctx)
}
