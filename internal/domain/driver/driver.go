package driver

import (
	"errors"
	"time"
)

// Driver is the domain entity corresponding to the `drivers` table.
// Exactly one driver profile exists per user; profiles are never deleted.
type Driver struct {
	ID        int64
	UserID    int64
	IsActive  bool
	CreatedAt time.Time
}

// Location is the latest known position of one driver. Each driver has at
// most one row; every update overwrites the previous one.
type Location struct {
	DriverID  int64
	Latitude  float64
	Longitude float64
	UpdatedAt time.Time
}

var (
	ErrNotFound         = errors.New("driver not found")
	ErrLocationNotFound = errors.New("driver location not found")
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// ValidateCoordinates checks latitude/longitude ranges.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return ErrInvalidLatitude
	}
	if lng < -180 || lng > 180 {
		return ErrInvalidLongitude
	}
	return nil
}
