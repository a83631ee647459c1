package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ride-track/internal/domain/user"
	"ride-track/internal/general/jwt"
	"ride-track/internal/ports"
)

// VerifyOTP checks the submitted code against the most recent passcode for
// the phone number. On success the passcode is consumed, the account is
// created if needed, and an access/refresh token pair is minted.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*ports.TokenPair, error) {
	phone, err := user.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	otp, err := s.otps.LatestByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if otp.AttemptCount >= s.maxAttempts {
		return nil, user.ErrTooManyAttempts
	}
	if otp.Expired(s.now()) {
		return nil, user.ErrOTPExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		if incErr := s.otps.IncrementAttempts(ctx, otp.ID); incErr != nil {
			s.logger.Error(ctx, "otp_attempt_update_failed", "Failed to record failed OTP attempt", incErr,
				map[string]any{"phone_number": phone})
		}
		return nil, user.ErrOTPMismatch
	}

	// consume the passcode so it cannot be replayed
	if err := s.otps.Delete(ctx, otp.ID); err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}

	u, created, err := s.users.GetOrCreateByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	if created {
		s.logger.Info(ctx, "user_created", "Created account on first OTP verification",
			map[string]any{"user_id": u.ID, "phone_number": phone})
	}

	access, accessClaims, err := s.tokens.IssueAccessToken(u.ID, u.Phone)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshClaims, err := s.tokens.IssueRefreshToken(u.ID, u.Phone)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &ports.TokenPair{
		Access:           access,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		Refresh:          refresh,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// RefreshAccess mints a fresh access token from a valid refresh token.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokens.ParseAndValidate(refreshToken, jwt.KindRefresh)
	if err != nil {
		return "", time.Time{}, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", time.Time{}, errors.New("malformed token subject")
	}

	// the account must still exist and be active
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !u.IsActive {
		return "", time.Time{}, user.ErrNotFound
	}

	access, accessClaims, err := s.tokens.IssueAccessToken(u.ID, u.Phone)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", err)
	}

	return access, accessClaims.ExpiresAt.Time, nil
}
