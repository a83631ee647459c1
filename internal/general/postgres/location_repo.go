package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-track/internal/domain/driver"
	"ride-track/internal/ports"
)

// LocationRepo persists the single latest location row per driver.
type LocationRepo struct {
	pool *pgxpool.Pool
}

// NewLocationRepo constructs a new LocationRepo.
func NewLocationRepo(pool *pgxpool.Pool) ports.LocationRepository {
	return &LocationRepo{pool: pool}
}

// Upsert overwrites the driver's location row, inserting it on first
// update. driver_locations is keyed by driver_id, so the at-most-one-row
// invariant is enforced by the schema.
func (repo *LocationRepo) Upsert(ctx context.Context, driverID int64, lat, lng float64, ts time.Time) error {
	_, err := repo.pool.Exec(ctx, `
		INSERT INTO driver_locations (driver_id, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id) DO UPDATE
		SET latitude   = EXCLUDED.latitude,
		    longitude  = EXCLUDED.longitude,
		    updated_at = EXCLUDED.updated_at
	`, driverID, lat, lng, ts)
	return err
}

// GetByDriverID returns the driver's latest location.
func (repo *LocationRepo) GetByDriverID(ctx context.Context, driverID int64) (*driver.Location, error) {
	var out driver.Location

	err := repo.pool.QueryRow(ctx, `
		SELECT driver_id, latitude, longitude, updated_at
		FROM driver_locations
		WHERE driver_id = $1
	`, driverID).Scan(&out.DriverID, &out.Latitude, &out.Longitude, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, driver.ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}
