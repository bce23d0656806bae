package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/service"
)

// PaymentStore implements service.PaymentStore over PostgreSQL. The ledger
// is append-only; there are no update or delete operations.
type PaymentStore struct {
	db *pgxpool.Pool
}

var _ service.PaymentStore = (*PaymentStore)(nil)

func NewPaymentStore(db *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{db: db}
}

// Create inserts one ledger row. A replayed gateway callback hits the unique
// (subscription_id, external_payment_id) index and returns (false, nil)
// instead of a duplicate row or an error.
func (s *PaymentStore) Create(ctx context.Context, payment *domain.Payment) (bool, error) {
	query := `
		INSERT INTO payments (id, amount_minor, email, type, currency, user_id, subscription_id, external_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (subscription_id, external_payment_id) DO NOTHING
	`
	tag, err := s.db.Exec(ctx, query,
		payment.ID, payment.AmountMinor, payment.Email, payment.Type, payment.Currency,
		payment.UserID, payment.SubscriptionID, payment.ExternalPaymentID, payment.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
