package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sinatle/donation/internal/domain"
)

// SubscriptionService provides business logic for recurring donations.
type SubscriptionService interface {
	// Subscribe starts a new recurring donation by asking the gateway for
	// a hosted checkout page. No local subscription row is created here:
	// creation is deferred to the webhook so an abandoned checkout never
	// leaves an orphaned row.
	//
	// Returns ErrUserAlreadyExists when the email already holds a live
	// (active or incomplete) subscription other than IgnoreSubscriptionID.
	// Returns ErrCheckoutURLUnavailable when the gateway produced no URL.
	Subscribe(ctx context.Context, params SubscribeParams) (string, error)

	// EditSubscription replaces a subscription's amount by canceling the
	// existing subscription and starting a fresh checkout. The old id is
	// passed through as IgnoreSubscriptionID so the live-subscription
	// check does not self-block during the transition window.
	EditSubscription(ctx context.Context, userID, subscriptionID uuid.UUID, newAmountMinor int64) (string, error)

	// Unsubscribe stops the recurring charge at the gateway and, only when
	// the gateway reports success, transitions the local subscription to
	// canceled. A remote refusal leaves local state unchanged and returns
	// false; the caller may retry.
	//
	// Returns ErrNotSubscriptionOwner when userID did not create the
	// subscription.
	Unsubscribe(ctx context.Context, subscriptionID, userID uuid.UUID) (bool, error)

	// HandleCallback reconciles one gateway webhook: verify the signature,
	// correlate the callback to a subscription (creating subscription and
	// user on the first successful charge), drive the state transition and
	// record the ledger entry. Idempotent under callback replay.
	HandleCallback(ctx context.Context, params map[string]string) error
}

// SubscribeParams contains parameters for starting a subscription checkout.
type SubscribeParams struct {
	// AmountMinor is the recurring donation in minor currency units.
	AmountMinor int64

	// Email, Name and LastName identify the donor. The email does not
	// need to belong to an existing user.
	Email    string
	Name     string
	LastName string

	// IgnoreSubscriptionID exempts one subscription from the
	// live-subscription check. Used by the edit flow.
	IgnoreSubscriptionID *uuid.UUID
}

// SubscriptionStore persists subscriptions.
// Lookups return (nil, nil) when no row matches.
type SubscriptionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Subscription, error)

	// GetLiveByUserID returns the user's subscription in the active or
	// incomplete state, if any.
	GetLiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)

	Create(ctx context.Context, sub *domain.Subscription) error
	Update(ctx context.Context, sub *domain.Subscription) error
}

// UserStore persists donor accounts.
// Lookups return (nil, nil) when no row matches; emails are normalized by
// the caller.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

// PaymentStore appends to the payment ledger.
type PaymentStore interface {
	// Create inserts a ledger row. Returns false without error when a row
	// with the same (subscription id, external payment id) dedupe key
	// already exists - the idempotent no-op under callback replay.
	Create(ctx context.Context, payment *domain.Payment) (bool, error)
}

// OtpStore persists one-time passwords.
type OtpStore interface {
	Create(ctx context.Context, otp *domain.Otp) error

	// GetLatestByEmail returns the most recent code for the email, or
	// (nil, nil) when none exists.
	GetLatestByEmail(ctx context.Context, email string) (*domain.Otp, error)

	MarkUsed(ctx context.Context, id uuid.UUID) error
}
