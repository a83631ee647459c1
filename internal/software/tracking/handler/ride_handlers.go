package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ride-track/internal/domain/driver"
	"ride-track/internal/domain/ride"
	"ride-track/internal/general/jwt"
	"ride-track/internal/ports"
)

type createRideRequest struct {
	RideID   string `json:"ride_id"`
	DriverID int64  `json:"driver_id"`
}

type rideResponse struct {
	RideID    string    `json:"ride_id"`
	DriverID  int64     `json:"driver_id"`
	RiderID   int64     `json:"rider_id"`
	CreatedAt time.Time `json:"created_at"`
}

type locationResponse struct {
	DriverID  int64     `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRideResponse(r *ride.Ride) rideResponse {
	return rideResponse{
		RideID:    r.RideID,
		DriverID:  r.DriverID,
		RiderID:   r.RiderID,
		CreatedAt: r.CreatedAt,
	}
}

func (handler *TrackingHTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}
	riderID, err := claims.UserID()
	if err != nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Authentication required.", err)
		return
	}

	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid JSON body.", err)
		return
	}
	if req.DriverID == 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "driver_id is required.", nil)
		return
	}

	if _, err := handler.svc.GetDriver(ctx, req.DriverID); err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			handler.httpError(ctx, w, http.StatusBadRequest, "Driver not found.", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to create ride.", err)
		return
	}

	stored, created, err := handler.svc.CreateRide(ctx, ports.CreateRideInput{
		RideKey:  req.RideID,
		DriverID: req.DriverID,
		RiderID:  riderID,
	})
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to create ride.", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	handler.jsonResponse(ctx, w, status, toRideResponse(stored))
}

func (handler *TrackingHTTPHandler) handleGetRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideKey := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideKey)

	stored, err := handler.svc.GetRide(ctx, rideKey)
	if err != nil {
		if errors.Is(err, ride.ErrNotFound) {
			handler.httpError(ctx, w, http.StatusNotFound, "Ride not found.", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to load ride.", err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, toRideResponse(stored))
}

func (handler *TrackingHTTPHandler) handleRideLocation(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideKey := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideKey)

	loc, err := handler.svc.RideLocation(ctx, rideKey)
	if err != nil {
		switch {
		case errors.Is(err, ride.ErrNotFound):
			handler.httpError(ctx, w, http.StatusNotFound, "Ride not found.", err)
		case errors.Is(err, driver.ErrLocationNotFound):
			handler.httpError(ctx, w, http.StatusNotFound, "Location not available for this driver.", err)
		default:
			handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to load ride location.", err)
		}
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, locationResponse{
		DriverID:  loc.DriverID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UpdatedAt: loc.UpdatedAt,
	})
}
