package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ride-track/internal/domain/user"
)

type sendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (handler *AuthHTTPHandler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid JSON body.", err)
		return
	}

	if err := handler.svc.SendOTP(ctx, req.PhoneNumber); err != nil {
		if errors.Is(err, user.ErrInvalidPhone) {
			handler.httpError(ctx, w, http.StatusBadRequest, "phone_number is required.", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to send OTP.", err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"detail": "OTP sent successfully."})
}

func (handler *AuthHTTPHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid JSON body.", err)
		return
	}
	if req.OTP == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "otp is required.", nil)
		return
	}

	pair, err := handler.svc.VerifyOTP(ctx, req.PhoneNumber, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidPhone):
			handler.httpError(ctx, w, http.StatusBadRequest, "phone_number is required.", err)
		case errors.Is(err, user.ErrOTPNotFound):
			handler.httpError(ctx, w, http.StatusBadRequest, "OTP not found. Please request a new one.", err)
		case errors.Is(err, user.ErrOTPExpired):
			handler.httpError(ctx, w, http.StatusBadRequest, "OTP has expired. Please request a new one.", err)
		case errors.Is(err, user.ErrOTPMismatch):
			handler.httpError(ctx, w, http.StatusBadRequest, "Invalid OTP.", err)
		case errors.Is(err, user.ErrTooManyAttempts):
			handler.httpError(ctx, w, http.StatusBadRequest, "Maximum OTP attempts exceeded. Please request a new OTP.", err)
		default:
			handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to verify OTP.", err)
		}
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

func (handler *AuthHTTPHandler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid JSON body.", err)
		return
	}
	if req.Refresh == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "refresh is required.", nil)
		return
	}

	access, _, err := handler.svc.RefreshAccess(ctx, req.Refresh)
	if err != nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "Token is invalid or expired.", err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"access": access})
}
