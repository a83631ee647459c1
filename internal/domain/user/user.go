package user

import (
	"errors"
	"strings"
	"time"
)

// User is the domain entity corresponding to the `users` table.
// Accounts are keyed by phone number and created lazily on first
// successful OTP verification.
type User struct {
	ID        int64
	Phone     string
	IsActive  bool
	CreatedAt time.Time
}

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidPhone = errors.New("invalid phone number")
)

// NormalizePhone trims whitespace and enforces the length bounds accepted
// by the OTP endpoints.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 8 || len(phone) > 20 {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
