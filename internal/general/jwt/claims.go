package jwt

import (
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims defines our canonical JWT claims payload. Subject carries the
// user id as a decimal string.
type Claims struct {
	Phone string    `json:"phone"`
	Kind  TokenKind `json:"kind"`
	jwtlib.RegisteredClaims
}

var _ jwtlib.Claims = (*Claims)(nil)

// NewUserClaims constructs claims for a verified phone-number account.
func NewUserClaims(userID int64, phone string, kind TokenKind, ttl time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		Phone: phone,
		Kind:  kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
}

// UserID parses the subject back into the numeric user id.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
