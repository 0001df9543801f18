package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portidempotency "github.com/alanyang/agentpages/internal/port/idempotency"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Check looks up an unexpired idempotency key. Returns the stored response,
// whether the key exists, and any error.
func (r *Repository) Check(ctx context.Context, key string) (portidempotency.Result, bool, error) {
	query := `SELECT status, body FROM processed_operations WHERE idempotency_key = $1 AND expires_at > NOW()`

	var res portidempotency.Result
	err := r.pool.QueryRow(ctx, query, key).Scan(&res.Status, &res.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return portidempotency.Result{}, false, nil
		}
		return portidempotency.Result{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return res, true, nil
}

// Save records a processed operation keyed by the idempotency key. An expired
// row for the same key is replaced.
func (r *Repository) Save(ctx context.Context, key string, res portidempotency.Result, ttl time.Duration) error {
	query := `
		INSERT INTO processed_operations (idempotency_key, status, body, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (idempotency_key) DO UPDATE SET
			status = EXCLUDED.status,
			body = EXCLUDED.body,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
		WHERE processed_operations.expires_at <= NOW()`

	_, err := r.pool.Exec(ctx, query, key, res.Status, res.Body, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
