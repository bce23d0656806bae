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

// SubscriptionStore implements service.SubscriptionStore over PostgreSQL.
type SubscriptionStore struct {
	db *pgxpool.Pool
}

var _ service.SubscriptionStore = (*SubscriptionStore)(nil)

func NewSubscriptionStore(db *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const subscriptionColumns = `id, user_id, external_id, amount_minor, currency, status, next_billing_at, masked_card, created_at, updated_at`

func (s *SubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, query,
		sub.ID, sub.UserID, sub.ExternalID, sub.AmountMinor, sub.Currency,
		sub.Status, sub.NextBillingAt, sub.MaskedCard, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) Update(ctx context.Context, sub *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET external_id = $2, amount_minor = $3, currency = $4, status = $5,
		    next_billing_at = $6, masked_card = $7, updated_at = $8
		WHERE id = $1
	`
	_, err := s.db.Exec(ctx, query,
		sub.ID, sub.ExternalID, sub.AmountMinor, sub.Currency,
		sub.Status, sub.NextBillingAt, sub.MaskedCard, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id))
}

func (s *SubscriptionStore) GetByExternalID(ctx context.Context, externalID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE external_id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, externalID))
}

func (s *SubscriptionStore) GetLiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND status IN ('active', 'incomplete')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRow(ctx, query, userID))
}

func (s *SubscriptionStore) scanOne(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ExternalID, &sub.AmountMinor, &sub.Currency,
		&sub.Status, &sub.NextBillingAt, &sub.MaskedCard, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return &sub, nil
}
