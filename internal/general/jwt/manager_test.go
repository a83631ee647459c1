package jwt

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour, 24*time.Hour)

	signed, issued, err := mgr.IssueAccessToken(42, "+15550001111")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if issued.Kind != KindAccess {
		t.Fatalf("issued kind = %q", issued.Kind)
	}

	claims, err := mgr.ParseAndValidate(signed, KindAccess)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Phone != "+15550001111" {
		t.Fatalf("phone = %q", claims.Phone)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != 42 {
		t.Fatalf("user id = %d", id)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour, 24*time.Hour)

	signed, _, err := mgr.IssueRefreshToken(7, "+15550001111")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	if _, err := mgr.ParseAndValidate(signed, KindAccess); err != ErrWrongTokenKind {
		t.Fatalf("want ErrWrongTokenKind, got %v", err)
	}
	if _, err := mgr.ParseAndValidate(signed, KindRefresh); err != nil {
		t.Fatalf("refresh token rejected as refresh: %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute, 24*time.Hour)

	signed, _, err := mgr.IssueAccessToken(1, "+15550001111")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := mgr.ParseAndValidate(signed, KindAccess); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	mgr := NewManager("secret-a", time.Hour, 24*time.Hour)
	other := NewManager("secret-b", time.Hour, 24*time.Hour)

	signed, _, err := mgr.IssueAccessToken(1, "+15550001111")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := other.ParseAndValidate(signed, KindAccess); err == nil {
		t.Fatal("token validated under wrong secret")
	}
}

func TestFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws/tracking?token=abc.def.ghi", nil)
	got, err := FromQuery(r, "token")
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if got != "abc.def.ghi" {
		t.Fatalf("token = %q", got)
	}

	r = httptest.NewRequest("GET", "/ws/tracking?token=Bearer%20abc.def.ghi", nil)
	got, err = FromQuery(r, "token")
	if err != nil {
		t.Fatalf("FromQuery with prefix: %v", err)
	}
	if got != "abc.def.ghi" {
		t.Fatalf("token with prefix = %q", got)
	}

	r = httptest.NewRequest("GET", "/ws/tracking", nil)
	if _, err := FromQuery(r, "token"); err != ErrNoToken {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
}
