package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-track/internal/domain/user"
	"ride-track/internal/ports"
)

// UserRepo persists users using pgx and plain SQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo constructs a new UserRepo.
func NewUserRepo(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepo{pool: pool}
}

// GetOrCreateByPhone returns the user for the phone number, inserting a row
// when none exists yet. Safe under concurrent verification of the same
// phone: the insert is ON CONFLICT DO NOTHING followed by a re-read.
func (repo *UserRepo) GetOrCreateByPhone(ctx context.Context, phone string) (*user.User, bool, error) {
	var out user.User

	err := repo.pool.QueryRow(ctx, `
		INSERT INTO users (phone_number)
		VALUES ($1)
		ON CONFLICT (phone_number) DO NOTHING
		RETURNING id, phone_number, is_active, created_at
	`, phone).Scan(&out.ID, &out.Phone, &out.IsActive, &out.CreatedAt)
	if err == nil {
		return &out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// conflict path: the row already existed
	err = repo.pool.QueryRow(ctx, `
		SELECT id, phone_number, is_active, created_at
		FROM users
		WHERE phone_number = $1
	`, phone).Scan(&out.ID, &out.Phone, &out.IsActive, &out.CreatedAt)
	if err != nil {
		return nil, false, err
	}
	return &out, false, nil
}

// GetByID returns one user by id.
func (repo *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var out user.User

	err := repo.pool.QueryRow(ctx, `
		SELECT id, phone_number, is_active, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&out.ID, &out.Phone, &out.IsActive, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}
