package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken            = errors.New("bearer token missing")
	ErrInvalidSigningAlgo = errors.New("unexpected signing method")
	ErrWrongTokenKind     = errors.New("wrong token kind")
)

// Manager handles JWT creation and validation.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	s := strings.TrimSpace(secret)
	if s == "" {
		panic("jwt: empty secret key")
	}

	return &Manager{
		secret:     []byte(s),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken returns a signed access token for a verified user.
func (m *Manager) IssueAccessToken(userID int64, phone string) (string, *Claims, error) {
	return m.issue(userID, phone, KindAccess, m.accessTTL)
}

// IssueRefreshToken returns a signed refresh token for a verified user.
func (m *Manager) IssueRefreshToken(userID int64, phone string) (string, *Claims, error) {
	return m.issue(userID, phone, KindRefresh, m.refreshTTL)
}

func (m *Manager) issue(userID int64, phone string, kind TokenKind, ttl time.Duration) (string, *Claims, error) {
	claims := NewUserClaims(userID, phone, kind, ttl)
	tkn := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tkn.SignedString(m.secret)
	return signed, claims, err
}

// ParseAndValidate verifies signature, standard claims, and the token kind.
func (m *Manager) ParseAndValidate(tokenString string, kind TokenKind) (*Claims, error) {
	parser := jwtlib.NewParser(jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwtlib.Token) (any, error) {
		if t.Method != jwtlib.SigningMethodHS256 {
			return nil, ErrInvalidSigningAlgo
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}

	return claims, nil
}

// FromAuthorization reads "Authorization: Bearer <token>".
func FromAuthorization(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}
	return "", ErrNoToken
}

// FromQuery reads the bearer token from the named query parameter. The
// WebSocket handshake passes its credential this way.
func FromQuery(r *http.Request, param string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return "", ErrNoToken
	}
	// tolerate clients that send "Bearer <token>" in the parameter
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		raw = strings.TrimSpace(after)
	}
	return raw, nil
}

// Context wiring (used by middleware)
type ctxKey string

const claimsCtxKey ctxKey = "jwtClaims"

// InjectClaims adds JWT claims to the context.
func InjectClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// FromContext extracts JWT claims from the context.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok
}
