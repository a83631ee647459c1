package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ride-track/internal/domain/user"
	"ride-track/internal/general/jwt"
	"ride-track/internal/general/logger"
)

// fakeUserRepo keeps accounts in memory, keyed by phone.
type fakeUserRepo struct {
	nextID int64
	byID   map[int64]*user.User
	byTel  map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, byID: map[int64]*user.User{}, byTel: map[string]*user.User{}}
}

func (r *fakeUserRepo) GetOrCreateByPhone(_ context.Context, phone string) (*user.User, bool, error) {
	if u, ok := r.byTel[phone]; ok {
		return u, false, nil
	}
	u := &user.User{ID: r.nextID, Phone: phone, IsActive: true, CreatedAt: time.Now()}
	r.nextID++
	r.byID[u.ID] = u
	r.byTel[phone] = u
	return u, true, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

// fakeOTPRepo keeps passcodes in memory, newest last.
type fakeOTPRepo struct {
	nextID int64
	otps   []*user.OTP
}

func newFakeOTPRepo() *fakeOTPRepo { return &fakeOTPRepo{nextID: 1} }

func (r *fakeOTPRepo) Create(_ context.Context, otp *user.OTP) error {
	otp.ID = r.nextID
	r.nextID++
	otp.CreatedAt = time.Now()
	r.otps = append(r.otps, otp)
	return nil
}

func (r *fakeOTPRepo) LatestByPhone(_ context.Context, phone string) (*user.OTP, error) {
	for i := len(r.otps) - 1; i >= 0; i-- {
		if r.otps[i].Phone == phone {
			cp := *r.otps[i]
			return &cp, nil
		}
	}
	return nil, user.ErrOTPNotFound
}

func (r *fakeOTPRepo) IncrementAttempts(_ context.Context, id int64) error {
	for _, o := range r.otps {
		if o.ID == id {
			o.AttemptCount++
			return nil
		}
	}
	return user.ErrOTPNotFound
}

func (r *fakeOTPRepo) Delete(_ context.Context, id int64) error {
	for i, o := range r.otps {
		if o.ID == id {
			r.otps = append(r.otps[:i], r.otps[i+1:]...)
			return nil
		}
	}
	return nil
}

const (
	testPhone = "+15550001111"
	testCode  = "428816"
)

func newTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeOTPRepo, *jwt.Manager) {
	t.Helper()
	users := newFakeUserRepo()
	otps := newFakeOTPRepo()
	tokens := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(logger.New("auth-test"), users, otps, tokens, 5*time.Minute, 3)
	svc.generate = func() (string, error) { return testCode, nil }
	return svc, users, otps, tokens
}

func sendOTP(t *testing.T, svc *AuthService) {
	t.Helper()
	if err := svc.SendOTP(context.Background(), testPhone); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
}

func TestSendAndVerifyOTP(t *testing.T) {
	svc, _, otps, tokens := newTestService(t)
	ctx := context.Background()

	sendOTP(t, svc)

	pair, err := svc.VerifyOTP(ctx, testPhone, testCode)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("empty token pair")
	}

	claims, err := tokens.ParseAndValidate(pair.Access, jwt.KindAccess)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Phone != testPhone {
		t.Fatalf("claims phone = %q", claims.Phone)
	}
	if _, err := tokens.ParseAndValidate(pair.Refresh, jwt.KindRefresh); err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}

	// the passcode is single-use
	if len(otps.otps) != 0 {
		t.Fatalf("otp not consumed, %d left", len(otps.otps))
	}
	if _, err := svc.VerifyOTP(ctx, testPhone, testCode); !errors.Is(err, user.ErrOTPNotFound) {
		t.Fatalf("replay: want ErrOTPNotFound, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, _, otps, _ := newTestService(t)
	ctx := context.Background()

	sendOTP(t, svc)

	wrong := "000000"
	if wrong == testCode {
		wrong = "000001"
	}
	if _, err := svc.VerifyOTP(ctx, testPhone, wrong); !errors.Is(err, user.ErrOTPMismatch) {
		t.Fatalf("want ErrOTPMismatch, got %v", err)
	}
	if otps.otps[0].AttemptCount != 1 {
		t.Fatalf("attempt count = %d", otps.otps[0].AttemptCount)
	}

	// the right code still works below the attempt cap
	if _, err := svc.VerifyOTP(ctx, testPhone, testCode); err != nil {
		t.Fatalf("VerifyOTP after one mistake: %v", err)
	}
}

func TestVerifyOTPAttemptCap(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	sendOTP(t, svc)
	wrong := "000000"
	if wrong == testCode {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.VerifyOTP(ctx, testPhone, wrong); !errors.Is(err, user.ErrOTPMismatch) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	// cap reached: even the right code is refused now
	if _, err := svc.VerifyOTP(ctx, testPhone, testCode); !errors.Is(err, user.ErrTooManyAttempts) {
		t.Fatalf("want ErrTooManyAttempts, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	sendOTP(t, svc)

	svc.now = func() time.Time { return time.Now().UTC().Add(6 * time.Minute) }
	if _, err := svc.VerifyOTP(ctx, testPhone, testCode); !errors.Is(err, user.ErrOTPExpired) {
		t.Fatalf("want ErrOTPExpired, got %v", err)
	}
}

func TestVerifyOTPUnknownPhone(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.VerifyOTP(context.Background(), testPhone, "123456"); !errors.Is(err, user.ErrOTPNotFound) {
		t.Fatalf("want ErrOTPNotFound, got %v", err)
	}
}

func TestSendOTPRejectsBadPhone(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if err := svc.SendOTP(context.Background(), "123"); !errors.Is(err, user.ErrInvalidPhone) {
		t.Fatalf("want ErrInvalidPhone, got %v", err)
	}
}

func TestRefreshAccess(t *testing.T) {
	svc, users, _, tokens := newTestService(t)
	ctx := context.Background()

	sendOTP(t, svc)
	pair, err := svc.VerifyOTP(ctx, testPhone, testCode)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}

	access, expiresAt, err := svc.RefreshAccess(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("RefreshAccess: %v", err)
	}
	if expiresAt.Before(time.Now()) {
		t.Fatalf("refreshed token already expired at %v", expiresAt)
	}
	if _, err := tokens.ParseAndValidate(access, jwt.KindAccess); err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}

	// an access token is not accepted in place of a refresh token
	if _, _, err := svc.RefreshAccess(ctx, pair.Access); err == nil {
		t.Fatal("access token accepted for refresh")
	}

	// a deactivated account cannot refresh
	users.byTel[testPhone].IsActive = false
	if _, _, err := svc.RefreshAccess(ctx, pair.Refresh); err == nil {
		t.Fatal("inactive account refreshed")
	}
}
