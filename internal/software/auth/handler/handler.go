package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

// AuthHTTPHandler adapts HTTP requests to the AuthService.
type AuthHTTPHandler struct {
	svc    ports.AuthService
	logger *logger.Logger
}

// NewAuthHTTPHandler wires an HTTP handler around the AuthService.
func NewAuthHTTPHandler(svc ports.AuthService, log *logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{svc: svc, logger: log}
}

// RegisterRoutes mounts auth endpoints on the provided mux.
func (handler *AuthHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/otp/send", handler.handleSendOTP)
	mux.HandleFunc("POST /auth/otp/verify", handler.handleVerifyOTP)
	mux.HandleFunc("POST /auth/token/refresh", handler.handleRefreshToken)
	mux.HandleFunc("GET /auth/health", handler.handleHealth)
}

func (handler *AuthHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- general helpers -----

func (handler *AuthHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
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

// httpError sends a JSON error response with a message.
func (handler *AuthHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
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

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *AuthHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
