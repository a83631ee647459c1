package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"ride-track/internal/general/jwt"
	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

// TrackingHTTPHandler exposes the driver/ride REST surface.
type TrackingHTTPHandler struct {
	svc    ports.TrackingService
	tokens *jwt.Manager
	logger *logger.Logger
}

func NewTrackingHTTPHandler(svc ports.TrackingService, tokens *jwt.Manager, log *logger.Logger) *TrackingHTTPHandler {
	return &TrackingHTTPHandler{svc: svc, tokens: tokens, logger: log}
}

// RegisterRoutes mounts tracking endpoints on the provided mux. All
// routes except the health check require a valid access token.
func (handler *TrackingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	auth := jwt.AuthMiddlewareFunc(handler.tokens)

	mux.HandleFunc("GET /tracking/me/driver", auth(handler.handleGetMyDriver))
	mux.HandleFunc("POST /tracking/me/driver", auth(handler.handleCreateMyDriver))
	mux.HandleFunc("POST /tracking/rides", auth(handler.handleCreateRide))
	mux.HandleFunc("GET /tracking/rides/{ride_id}", auth(handler.handleGetRide))
	mux.HandleFunc("GET /tracking/rides/{ride_id}/location", auth(handler.handleRideLocation))
	mux.HandleFunc("GET /tracking/health", handler.handleHealth)
}

func (handler *TrackingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- general helpers -----

func (handler *TrackingHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *TrackingHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Detail string `json:"detail"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Detail: msg})
}

func (handler *TrackingHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
