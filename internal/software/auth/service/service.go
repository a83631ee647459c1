package service

import (
	"time"

	"ride-track/internal/general/jwt"
	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

// AuthService implements phone-number OTP authentication and token minting.
type AuthService struct {
	logger *logger.Logger
	users  ports.UserRepository
	otps   ports.OTPRepository
	tokens *jwt.Manager

	otpExpiry   time.Duration
	maxAttempts int

	now      func() time.Time       // injectable clock for tests
	generate func() (string, error) // injectable code source for tests
}

// NewAuthService wires the auth service with its repositories and token
// manager.
func NewAuthService(
	log *logger.Logger,
	users ports.UserRepository,
	otps ports.OTPRepository,
	tokens *jwt.Manager,
	otpExpiry time.Duration,
	maxAttempts int,
) *AuthService {
	return &AuthService{
		logger:      log,
		users:       users,
		otps:        otps,
		tokens:      tokens,
		otpExpiry:   otpExpiry,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		generate:    generateCode,
	}
}

var _ ports.AuthService = (*AuthService)(nil)
