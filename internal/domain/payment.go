package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentType classifies ledger entries.
type PaymentType string

const (
	PaymentOneTime      PaymentType = "one_time"
	PaymentDonation     PaymentType = "donation"
	PaymentSubscription PaymentType = "subscription"
)

// Payment is an append-only ledger row. Rows are never mutated or deleted
// after creation.
type Payment struct {
	ID          uuid.UUID
	AmountMinor int64
	Email       string
	Type        PaymentType
	Currency    Currency

	// UserID and SubscriptionID are set when the payment could be
	// correlated with local records at write time.
	UserID         *uuid.UUID
	SubscriptionID *uuid.UUID

	// ExternalPaymentID is the gateway's payment id for this charge.
	// Together with SubscriptionID it forms the dedupe key that makes
	// ledger inserts idempotent under callback replay.
	ExternalPaymentID string

	CreatedAt time.Time
}

// NewPayment creates a ledger row with a normalized email.
func NewPayment(amountMinor int64, email string, typ PaymentType, currency Currency) *Payment {
	return &Payment{
		ID:          uuid.New(),
		AmountMinor: amountMinor,
		Email:       NormalizeEmail(email),
		Type:        typ,
		Currency:    currency,
		CreatedAt:   time.Now().UTC(),
	}
}
