package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/service"
)

// OtpStore implements service.OtpStore over PostgreSQL.
type OtpStore struct {
	db *pgxpool.Pool
}

var _ service.OtpStore = (*OtpStore)(nil)

func NewOtpStore(db *pgxpool.Pool) *OtpStore {
	return &OtpStore{db: db}
}

func (s *OtpStore) Create(ctx context.Context, otp *domain.Otp) error {
	query := `
		INSERT INTO otps (id, email, code, used, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.Exec(ctx, query,
		otp.ID, otp.Email, otp.Code, otp.Used, otp.CreatedAt, otp.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}
	return nil
}

// GetLatestByEmail returns the newest code for the email. Only the latest
// code is redeemable; requesting a new code invalidates the previous one.
func (s *OtpStore) GetLatestByEmail(ctx context.Context, email string) (*domain.Otp, error) {
	query := `
		SELECT id, email, code, used, created_at, expires_at
		FROM otps
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var otp domain.Otp
	err := s.db.QueryRow(ctx, query, email).Scan(
		&otp.ID, &otp.Email, &otp.Code, &otp.Used, &otp.CreatedAt, &otp.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan otp: %w", err)
	}
	return &otp, nil
}

func (s *OtpStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE otps SET used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark otp used: %w", err)
	}
	return nil
}
