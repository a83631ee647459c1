package user

import (
	"errors"
	"time"
)

// OTP is a single-use passcode issued for a phone number. Only the bcrypt
// hash is stored; the raw code never touches the database.
type OTP struct {
	ID           int64
	Phone        string
	CodeHash     string
	AttemptCount int
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

var (
	ErrOTPNotFound     = errors.New("otp not found")
	ErrOTPExpired      = errors.New("otp has expired")
	ErrOTPMismatch     = errors.New("invalid otp")
	ErrTooManyAttempts = errors.New("maximum otp attempts exceeded")
)

// Expired reports whether the passcode is past its expiry at the given time.
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
