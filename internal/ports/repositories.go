package ports

import (
	"context"
	"time"

	"ride-track/internal/domain/driver"
	"ride-track/internal/domain/ride"
	"ride-track/internal/domain/user"
)

// UserRepository persists phone-number accounts.
type UserRepository interface {
	// GetOrCreateByPhone returns the existing user for the phone number or
	// inserts a new one. The bool reports whether a row was created.
	GetOrCreateByPhone(ctx context.Context, phone string) (*user.User, bool, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// OTPRepository persists one-time passcodes.
type OTPRepository interface {
	Create(ctx context.Context, otp *user.OTP) error
	// LatestByPhone returns the most recently created passcode for the
	// phone number, or user.ErrOTPNotFound.
	LatestByPhone(ctx context.Context, phone string) (*user.OTP, error)
	IncrementAttempts(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// DriverRepository persists driver profiles.
type DriverRepository interface {
	GetByID(ctx context.Context, id int64) (*driver.Driver, error)
	GetByUserID(ctx context.Context, userID int64) (*driver.Driver, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (*driver.Driver, bool, error)
}

// LocationRepository persists the single latest location row per driver.
type LocationRepository interface {
	Upsert(ctx context.Context, driverID int64, lat, lng float64, ts time.Time) error
	GetByDriverID(ctx context.Context, driverID int64) (*driver.Location, error)
}

// RideRepository persists rides keyed by their unique ride key.
type RideRepository interface {
	// GetOrCreate inserts the ride unless one with the same key already
	// exists, in which case the existing row is returned unchanged.
	GetOrCreate(ctx context.Context, r *ride.Ride) (*ride.Ride, bool, error)
	GetByKey(ctx context.Context, rideKey string) (*ride.Ride, error)
	Exists(ctx context.Context, rideKey string) (bool, error)
	// LatestForDriver returns the most recently created ride for the
	// driver, or ride.ErrNotFound when the driver has none.
	LatestForDriver(ctx context.Context, driverID int64) (*ride.Ride, error)
}
