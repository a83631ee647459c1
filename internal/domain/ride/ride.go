package ride

import (
	"errors"
	"strings"
	"time"
)

// Ride is the domain entity corresponding to the `rides` table. A ride
// links exactly one driver and one rider under a unique ride key and is
// immutable after creation.
type Ride struct {
	ID        int64
	RideID    string
	DriverID  int64
	RiderID   int64
	CreatedAt time.Time
}

var (
	ErrNotFound        = errors.New("ride not found")
	ErrRideKeyRequired = errors.New("ride id is required")
	ErrDriverRequired  = errors.New("driver id is required")
	ErrRiderRequired   = errors.New("rider id is required")
)

// New validates the actors and returns a ride ready to persist.
func New(rideKey string, driverID, riderID int64) (*Ride, error) {
	if rideKey = strings.TrimSpace(rideKey); rideKey == "" {
		return nil, ErrRideKeyRequired
	}
	if driverID <= 0 {
		return nil, ErrDriverRequired
	}
	if riderID <= 0 {
		return nil, ErrRiderRequired
	}

	return &Ride{
		RideID:    rideKey,
		DriverID:  driverID,
		RiderID:   riderID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
