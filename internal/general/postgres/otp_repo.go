package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-track/internal/domain/user"
	"ride-track/internal/ports"
)

// OTPRepo persists one-time passcodes using pgx and plain SQL.
type OTPRepo struct {
	pool *pgxpool.Pool
}

// NewOTPRepo constructs a new OTPRepo.
func NewOTPRepo(pool *pgxpool.Pool) ports.OTPRepository {
	return &OTPRepo{pool: pool}
}

// Create inserts a new passcode row.
func (repo *OTPRepo) Create(ctx context.Context, otp *user.OTP) error {
	return repo.pool.QueryRow(ctx, `
		INSERT INTO otps (phone_number, otp_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, attempt_count, created_at
	`, otp.Phone, otp.CodeHash, otp.ExpiresAt).Scan(&otp.ID, &otp.AttemptCount, &otp.CreatedAt)
}

// LatestByPhone returns the most recently created passcode for the phone.
func (repo *OTPRepo) LatestByPhone(ctx context.Context, phone string) (*user.OTP, error) {
	var out user.OTP

	err := repo.pool.QueryRow(ctx, `
		SELECT id, phone_number, otp_hash, attempt_count, expires_at, created_at
		FROM otps
		WHERE phone_number = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, phone).Scan(&out.ID, &out.Phone, &out.CodeHash, &out.AttemptCount, &out.ExpiresAt, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// IncrementAttempts bumps the failed-attempt counter.
func (repo *OTPRepo) IncrementAttempts(ctx context.Context, id int64) error {
	_, err := repo.pool.Exec(ctx, `
		UPDATE otps
		SET attempt_count = attempt_count + 1
		WHERE id = $1
	`, id)
	return err
}

// Delete removes a consumed passcode so it cannot be replayed.
func (repo *OTPRepo) Delete(ctx context.Context, id int64) error {
	_, err := repo.pool.Exec(ctx, `
		DELETE FROM otps
		WHERE id = $1
	`, id)
	return err
}
