package handler

import (
	"errors"
	"net/http"
	"time"

	"ride-track/internal/domain/driver"
	"ride-track/internal/general/jwt"
)

type driverResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toDriverResponse(d *driver.Driver) driverResponse {
	return driverResponse{
		ID:        d.ID,
		UserID:    d.UserID,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

func (handler *TrackingHTTPHandler) handleGetMyDriver(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Authentication required.", err)
		return
	}

	d, err := handler.svc.DriverProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			handler.httpError(ctx, w, http.StatusNotFound, "Driver profile not found.", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to load driver profile.", err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, toDriverResponse(d))
}

func (handler *TrackingHTTPHandler) handleCreateMyDriver(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Authentication required.", err)
		return
	}

	d, created, err := handler.svc.CreateDriverProfile(ctx, userID)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to create driver profile.", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	handler.jsonResponse(ctx, w, status, toDriverResponse(d))
}
