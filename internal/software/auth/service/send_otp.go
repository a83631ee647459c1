package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"ride-track/internal/domain/user"
)

// SendOTP generates a 6-digit passcode for the phone number and stores its
// bcrypt hash. The raw code is written to the service log instead of being
// handed to an SMS gateway.
func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	phone, err := user.NormalizePhone(phone)
	if err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	otp := &user.OTP{
		Phone:     phone,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.otpExpiry),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	// no SMS gateway wired; operators read the code from the log
	s.logger.Info(ctx, "otp_generated", "Generated OTP for phone number", map[string]any{
		"phone_number":   phone,
		"otp":            code,
		"expires_at":     otp.ExpiresAt,
		"expiry_minutes": s.otpExpiry.Minutes(),
	})

	return nil
}

// generateCode returns a uniformly random 6-digit code with leading zeros.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
