package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-track/internal/domain/driver"
	"ride-track/internal/ports"
)

// DriverRepo persists driver profiles using pgx and plain SQL.
type DriverRepo struct {
	pool *pgxpool.Pool
}

// NewDriverRepo constructs a new DriverRepo.
func NewDriverRepo(pool *pgxpool.Pool) ports.DriverRepository {
	return &DriverRepo{pool: pool}
}

// GetByID returns one driver by id.
func (repo *DriverRepo) GetByID(ctx context.Context, id int64) (*driver.Driver, error) {
	var out driver.Driver

	err := repo.pool.QueryRow(ctx, `
		SELECT id, user_id, is_active, created_at
		FROM drivers
		WHERE id = $1
	`, id).Scan(&out.ID, &out.UserID, &out.IsActive, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, driver.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// GetByUserID returns the driver profile owned by the given user.
func (repo *DriverRepo) GetByUserID(ctx context.Context, userID int64) (*driver.Driver, error) {
	var out driver.Driver

	err := repo.pool.QueryRow(ctx, `
		SELECT id, user_id, is_active, created_at
		FROM drivers
		WHERE user_id = $1
	`, userID).Scan(&out.ID, &out.UserID, &out.IsActive, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, driver.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// GetOrCreateByUserID returns the user's driver profile, inserting one when
// none exists. The drivers.user_id unique constraint keeps this race-free.
func (repo *DriverRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (*driver.Driver, bool, error) {
	var out driver.Driver

	err := repo.pool.QueryRow(ctx, `
		INSERT INTO drivers (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, is_active, created_at
	`, userID).Scan(&out.ID, &out.UserID, &out.IsActive, &out.CreatedAt)
	if err == nil {
		return &out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
