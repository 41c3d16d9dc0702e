package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistryRepo persists registry-level state that is not per-proposal:
// currently just the reviewer role, so transfers survive restarts.
type RegistryRepo struct {
	pool *pgxpool.Pool
}

func NewRegistryRepo(pool *pgxpool.Pool) *RegistryRepo {
	return &RegistryRepo{pool: pool}
}

func (r *RegistryRepo) SetReviewer(ctx context.Context, reviewer uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO registry_state (id, reviewer)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET reviewer = EXCLUDED.reviewer, updated_at = now()
	`, reviewer)
	return err
}

// GetReviewer returns the persisted reviewer, or uuid.Nil when no transfer
// has ever been recorded.
func (r *RegistryRepo) GetReviewer(ctx context.Context) (uuid.UUID, error) {
	var reviewer uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT reviewer FROM registry_state WHERE id = 1`).Scan(&reviewer)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return reviewer, nil
}
