package ports

import (
	"context"
	"time"

	"ride-track/internal/domain/driver"
	"ride-track/internal/domain/ride"
)

// TrackingStore is the narrow store view consumed by the WebSocket session
// machinery. Lookups are by exact key; location upserts are last-write-wins
// per driver.
type TrackingStore interface {
	GetDriver(ctx context.Context, id int64) (*driver.Driver, error)
	UpsertLocation(ctx context.Context, driverID int64, lat, lng float64, ts time.Time) error
	LatestRideForDriver(ctx context.Context, driverID int64) (*ride.Ride, error)
	RideExists(ctx context.Context, rideKey string) (bool, error)
}

// CreateRideInput carries the fields accepted by POST /tracking/rides.
type CreateRideInput struct {
	RideKey  string // optional; generated when empty
	DriverID int64
	RiderID  int64 // taken from the caller's token
}

// TrackingService is the full tracking surface: the store view used by the
// WebSocket core plus the HTTP CRUD operations around it.
type TrackingService interface {
	TrackingStore

	DriverProfile(ctx context.Context, userID int64) (*driver.Driver, error)
	CreateDriverProfile(ctx context.Context, userID int64) (*driver.Driver, bool, error)
	CreateRide(ctx context.Context, in CreateRideInput) (*ride.Ride, bool, error)
	GetRide(ctx context.Context, rideKey string) (*ride.Ride, error)
	RideLocation(ctx context.Context, rideKey string) (*driver.Location, error)
}

// TokenPair is the result of a successful OTP verification.
type TokenPair struct {
	Access           string
	AccessExpiresAt  time.Time
	Refresh          string
	RefreshExpiresAt time.Time
}

// AuthService issues and verifies one-time passcodes and mints tokens.
type AuthService interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (string, time.Time, error)
}

// EventPublisher mirrors domain events onto the message broker. Publishing
// is best-effort from the caller's point of view.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}
