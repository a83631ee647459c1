package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ride-track/internal/domain/driver"
	"ride-track/internal/domain/ride"
	"ride-track/internal/general/jwt"
	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

// stubTrackingService scripts service outcomes per test.
type stubTrackingService struct {
	driverByID   map[int64]*driver.Driver
	driverByUser map[int64]*driver.Driver
	rides        map[string]*ride.Ride
	location     *driver.Location

	createdRide *ride.Ride
	lastInput   ports.CreateRideInput
}

func newStub() *stubTrackingService {
	return &stubTrackingService{
		driverByID:   map[int64]*driver.Driver{},
		driverByUser: map[int64]*driver.Driver{},
		rides:        map[string]*ride.Ride{},
	}
}

func (s *stubTrackingService) GetDriver(_ context.Context, id int64) (*driver.Driver, error) {
	d, ok := s.driverByID[id]
	if !ok {
		return nil, driver.ErrNotFound
	}
	return d, nil
}

func (s *stubTrackingService) UpsertLocation(context.Context, int64, float64, float64, time.Time) error {
	return nil
}

func (s *stubTrackingService) LatestRideForDriver(context.Context, int64) (*ride.Ride, error) {
	return nil, ride.ErrNotFound
}

func (s *stubTrackingService) RideExists(_ context.Context, rideKey string) (bool, error) {
	_, ok := s.rides[rideKey]
	return ok, nil
}

func (s *stubTrackingService) DriverProfile(_ context.Context, userID int64) (*driver.Driver, error) {
	d, ok := s.driverByUser[userID]
	if !ok {
		return nil, driver.ErrNotFound
	}
	return d, nil
}

func (s *stubTrackingService) CreateDriverProfile(_ context.Context, userID int64) (*driver.Driver, bool, error) {
	if d, ok := s.driverByUser[userID]; ok {
		return d, false, nil
	}
	d := &driver.Driver{ID: 1, UserID: userID, IsActive: true}
	s.driverByUser[userID] = d
	return d, true, nil
}

func (s *stubTrackingService) CreateRide(_ context.Context, in ports.CreateRideInput) (*ride.Ride, bool, error) {
	s.lastInput = in
	return s.createdRide, true, nil
}

func (s *stubTrackingService) GetRide(_ context.Context, rideKey string) (*ride.Ride, error) {
	r, ok := s.rides[rideKey]
	if !ok {
		return nil, ride.ErrNotFound
	}
	return r, nil
}

func (s *stubTrackingService) RideLocation(_ context.Context, rideKey string) (*driver.Location, error) {
	if _, ok := s.rides[rideKey]; !ok {
		return nil, ride.ErrNotFound
	}
	if s.location == nil {
		return nil, driver.ErrLocationNotFound
	}
	return s.location, nil
}

// ----- harness -----

var testTokens = jwt.NewManager("test-secret", time.Hour, 24*time.Hour)

func serve(t *testing.T, svc ports.TrackingService, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewTrackingHTTPHandler(svc, testTokens, logger.New("tracking-handler-test")).RegisterRoutes(mux)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func accessToken(t *testing.T, userID int64) string {
	t.Helper()
	signed, _, err := testTokens.IssueAccessToken(userID, "+15550001111")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	return signed
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// ----- tests -----

func TestRoutesRequireAccessToken(t *testing.T) {
	paths := []struct{ method, path string }{
		{"GET", "/tracking/me/driver"},
		{"POST", "/tracking/me/driver"},
		{"POST", "/tracking/rides"},
		{"GET", "/tracking/rides/RIDE-X"},
		{"GET", "/tracking/rides/RIDE-X/location"},
	}
	for _, p := range paths {
		rec := serve(t, newStub(), p.method, p.path, "{}", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: status = %d", p.method, p.path, rec.Code)
		}
	}

	// health stays open
	rec := serve(t, newStub(), "GET", "/tracking/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestGetMyDriver(t *testing.T) {
	stub := newStub()
	stub.driverByUser[42] = &driver.Driver{ID: 7, UserID: 42, IsActive: true}

	rec := serve(t, stub, "GET", "/tracking/me/driver", "", accessToken(t, 42))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody(t, rec)
	if got["id"] != float64(7) || got["user_id"] != float64(42) {
		t.Fatalf("body = %v", got)
	}

	rec = serve(t, stub, "GET", "/tracking/me/driver", "", accessToken(t, 99))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing profile status = %d", rec.Code)
	}
	if got := decodeBody(t, rec); got["detail"] != "Driver profile not found." {
		t.Fatalf("body = %v", got)
	}
}

func TestCreateMyDriver(t *testing.T) {
	stub := newStub()

	rec := serve(t, stub, "POST", "/tracking/me/driver", "", accessToken(t, 42))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}

	rec = serve(t, stub, "POST", "/tracking/me/driver", "", accessToken(t, 42))
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat create status = %d", rec.Code)
	}
}

func TestCreateRide(t *testing.T) {
	stub := newStub()
	stub.driverByID[7] = &driver.Driver{ID: 7, UserID: 100, IsActive: true}
	stub.createdRide = &ride.Ride{ID: 1, RideID: "RIDE-GEN", DriverID: 7, RiderID: 42}

	rec := serve(t, stub, "POST", "/tracking/rides", `{"driver_id":7}`, accessToken(t, 42))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec); got["ride_id"] != "RIDE-GEN" {
		t.Fatalf("body = %v", got)
	}
	// rider comes from the caller's token, not the body
	if stub.lastInput.RiderID != 42 {
		t.Fatalf("rider id = %d", stub.lastInput.RiderID)
	}
}

func TestCreateRideValidation(t *testing.T) {
	stub := newStub()

	rec := serve(t, stub, "POST", "/tracking/rides", `{}`, accessToken(t, 42))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing driver_id status = %d", rec.Code)
	}
	if got := decodeBody(t, rec); got["detail"] != "driver_id is required." {
		t.Fatalf("body = %v", got)
	}

	rec = serve(t, stub, "POST", "/tracking/rides", `{"driver_id":999}`, accessToken(t, 42))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown driver status = %d", rec.Code)
	}
	if got := decodeBody(t, rec); got["detail"] != "Driver not found." {
		t.Fatalf("body = %v", got)
	}
}

func TestGetRide(t *testing.T) {
	stub := newStub()
	stub.rides["RIDE-X"] = &ride.Ride{ID: 1, RideID: "RIDE-X", DriverID: 7, RiderID: 42}

	rec := serve(t, stub, "GET", "/tracking/rides/RIDE-X", "", accessToken(t, 42))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec); got["ride_id"] != "RIDE-X" || got["driver_id"] != float64(7) {
		t.Fatalf("body = %v", got)
	}

	rec = serve(t, stub, "GET", "/tracking/rides/RIDE-NOPE", "", accessToken(t, 42))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing ride status = %d", rec.Code)
	}
}

func TestRideLocationEndpoint(t *testing.T) {
	stub := newStub()
	stub.rides["RIDE-X"] = &ride.Ride{ID: 1, RideID: "RIDE-X", DriverID: 7, RiderID: 42}

	rec := serve(t, stub, "GET", "/tracking/rides/RIDE-X/location", "", accessToken(t, 42))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("no location status = %d", rec.Code)
	}
	if got := decodeBody(t, rec); got["detail"] != "Location not available for this driver." {
		t.Fatalf("body = %v", got)
	}

	stub.location = &driver.Location{DriverID: 7, Latitude: 40.7, Longitude: -74.0, UpdatedAt: time.Now()}
	rec = serve(t, stub, "GET", "/tracking/rides/RIDE-X/location", "", accessToken(t, 42))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody(t, rec)
	if got["driver_id"] != float64(7) || got["latitude"] != 40.7 {
		t.Fatalf("body = %v", got)
	}
}
