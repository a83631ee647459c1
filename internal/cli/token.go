package cli

import (
	"fmt"
	"time"

	"ride-track/internal/general/jwt"
)

// GenerateUserToken mints a token for manual testing of protected routes.
func GenerateUserToken(secret string, userID int64, phone, kind string, ttl time.Duration) (string, *jwt.Claims, error) {
	mgr := jwt.NewManager(secret, ttl, ttl)

	switch kind {
	case string(jwt.KindAccess):
		return mgr.IssueAccessToken(userID, phone)
	case string(jwt.KindRefresh):
		return mgr.IssueRefreshToken(userID, phone)
	default:
		return "", nil, fmt.Errorf("unknown token kind %q", kind)
	}
}
