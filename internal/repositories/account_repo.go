package repositories

import (
	"context"
	"time"

	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, displayName *string, passwordHash string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (display_name, password_hash)
		VALUES ($1, $2)
		RETURNING id, display_name, password_hash, created_at, last_active_at
	`, displayName, passwordHash).Scan(&a.ID, &a.DisplayName, &a.PasswordHash, &a.CreatedAt, &a.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, display_name, password_hash, created_at, last_active_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.DisplayName, &a.PasswordHash, &a.CreatedAt, &a.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET last_active_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}
