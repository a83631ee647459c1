package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-track/internal/domain/ride"
	"ride-track/internal/ports"
)

// RideRepo persists rides using pgx and plain SQL.
type RideRepo struct {
	pool *pgxpool.Pool
}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo(pool *pgxpool.Pool) ports.RideRepository {
	return &RideRepo{pool: pool}
}

// GetOrCreate inserts the ride unless one with the same ride key exists,
// in which case the existing row is returned unchanged. Rides are
// immutable after creation.
func (repo *RideRepo) GetOrCreate(ctx context.Context, r *ride.Ride) (*ride.Ride, bool, error) {
	out := *r

	err := repo.pool.QueryRow(ctx, `
		INSERT INTO rides (ride_id, driver_id, rider_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (ride_id) DO NOTHING
		RETURNING id, created_at
	`, r.RideID, r.DriverID, r.RiderID).Scan(&out.ID, &out.CreatedAt)
	if err == nil {
		return &out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := repo.GetByKey(ctx, r.RideID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByKey returns one ride by its unique ride key.
func (repo *RideRepo) GetByKey(ctx context.Context, rideKey string) (*ride.Ride, error) {
	var out ride.Ride

	err := repo.pool.QueryRow(ctx, `
		SELECT id, ride_id, driver_id, rider_id, created_at
		FROM rides
		WHERE ride_id = $1
	`, rideKey).Scan(&out.ID, &out.RideID, &out.DriverID, &out.RiderID, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ride.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Exists reports whether a ride with the key exists.
func (repo *RideRepo) Exists(ctx context.Context, rideKey string) (bool, error) {
	var exists bool
	err := repo.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM rides WHERE ride_id = $1)
	`, rideKey).Scan(&exists)
	return exists, err
}

// LatestForDriver returns the most recently created ride for the driver.
func (repo *RideRepo) LatestForDriver(ctx context.Context, driverID int64) (*ride.Ride, error) {
	var out ride.Ride

	err := repo.pool.QueryRow(ctx, `
		SELECT id, ride_id, driver_id, rider_id, created_at
		FROM rides
		WHERE driver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, driverID).Scan(&out.ID, &out.RideID, &out.DriverID, &out.RiderID, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ride.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}
