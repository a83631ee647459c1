package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ride-track/internal/domain/driver"
	"ride-track/internal/domain/ride"
	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

// TrackingService coordinates driver, location and ride persistence for
// both the REST surface and the live tracking socket.
type TrackingService struct {
	logger    *logger.Logger
	drivers   ports.DriverRepository
	locations ports.LocationRepository
	rides     ports.RideRepository
	now       func() time.Time
}

func NewTrackingService(
	log *logger.Logger,
	drivers ports.DriverRepository,
	locations ports.LocationRepository,
	rides ports.RideRepository,
) *TrackingService {
	return &TrackingService{
		logger:    log,
		drivers:   drivers,
		locations: locations,
		rides:     rides,
		now:       time.Now,
	}
}

var _ ports.TrackingService = (*TrackingService)(nil)

// GetDriver loads a driver by its primary key.
func (s *TrackingService) GetDriver(ctx context.Context, id int64) (*driver.Driver, error) {
	return s.drivers.GetByID(ctx, id)
}

// DriverProfile loads the driver profile owned by the given user.
func (s *TrackingService) DriverProfile(ctx context.Context, userID int64) (*driver.Driver, error) {
	return s.drivers.GetByUserID(ctx, userID)
}

// CreateDriverProfile creates a driver profile for the user, or returns
// the existing one. The boolean reports whether a new profile was created.
func (s *TrackingService) CreateDriverProfile(ctx context.Context, userID int64) (*driver.Driver, bool, error) {
	d, created, err := s.drivers.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("create driver profile: %w", err)
	}
	if created {
		s.logger.Info(ctx, "driver_profile_created", "Driver profile created", map[string]any{
			"driver_id": d.ID,
			"user_id":   userID,
		})
	}
	return d, created, nil
}

// UpsertLocation validates coordinates and stores the driver's latest position.
func (s *TrackingService) UpsertLocation(ctx context.Context, driverID int64, lat, lng float64, ts time.Time) error {
	if err := driver.ValidateCoordinates(lat, lng); err != nil {
		return err
	}
	if ts.IsZero() {
		ts = s.now().UTC()
	}
	return s.locations.Upsert(ctx, driverID, lat, lng, ts)
}

// LatestRideForDriver returns the most recently created ride assigned to
// the driver.
func (s *TrackingService) LatestRideForDriver(ctx context.Context, driverID int64) (*ride.Ride, error) {
	return s.rides.LatestForDriver(ctx, driverID)
}

// RideExists reports whether a ride with the given key is known.
func (s *TrackingService) RideExists(ctx context.Context, rideKey string) (bool, error) {
	return s.rides.Exists(ctx, rideKey)
}

// CreateRide registers a new ride for a driver/rider pair. When no ride
// key is supplied a unique one is generated.
func (s *TrackingService) CreateRide(ctx context.Context, in ports.CreateRideInput) (*ride.Ride, bool, error) {
	key := strings.TrimSpace(in.RideKey)
	if key == "" {
		key = newRideKey()
	}

	r, err := ride.New(key, in.DriverID, in.RiderID)
	if err != nil {
		return nil, false, err
	}

	stored, created, err := s.rides.GetOrCreate(ctx, r)
	if err != nil {
		return nil, false, fmt.Errorf("create ride: %w", err)
	}
	if created {
		s.logger.Info(ctx, "ride_created", "Ride created", map[string]any{
			"ride_id":   stored.RideID,
			"driver_id": stored.DriverID,
			"rider_id":  stored.RiderID,
		})
	}
	return stored, created, nil
}

// GetRide loads a ride by its public key.
func (s *TrackingService) GetRide(ctx context.Context, rideKey string) (*ride.Ride, error) {
	return s.rides.GetByKey(ctx, rideKey)
}

// RideLocation returns the latest known position of the ride's driver.
func (s *TrackingService) RideLocation(ctx context.Context, rideKey string) (*driver.Location, error) {
	r, err := s.rides.GetByKey(ctx, rideKey)
	if err != nil {
		return nil, err
	}
	return s.locations.GetByDriverID(ctx, r.DriverID)
}

// newRideKey builds a short unique public identifier for a ride.
func newRideKey() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RIDE-" + strings.ToUpper(raw[:10])
}
