package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus enumerates subscription lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
)

// Currency enumerates supported ISO 4217 currency codes.
type Currency string

const (
	CurrencyGEL Currency = "GEL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Subscription is a recurring donation agreement for a single user.
//
// Lifecycle: incomplete -> active -> {past_due, canceled};
// active -> past_due -> active is allowed when a later charge succeeds;
// canceled is terminal. The mutators below do not validate the source
// state - the reconciliation engine is responsible for only invoking the
// transition that matches the situation.
type Subscription struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// ExternalID is the gateway-side correlation token: the checkout
	// order id or the gateway payment id, whichever a callback delivered
	// first. Unique across all subscriptions.
	ExternalID string

	// AmountMinor is the recurring charge in minor currency units (tetri,
	// cents). Immutable once set; an "edit" cancels this subscription and
	// creates a new one.
	AmountMinor int64

	Currency Currency
	Status   SubscriptionStatus

	// NextBillingAt is only meaningful while the subscription is active.
	NextBillingAt *time.Time

	// MaskedCard is a display-only card number, e.g. "444455XXXXXX1111".
	MaskedCard string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubscription creates a subscription in the incomplete state.
// It becomes active only through Activate, driven by a verified callback.
func NewSubscription(userID uuid.UUID, amountMinor int64, currency Currency, externalID string) *Subscription {
	now := time.Now().UTC()
	return &Subscription{
		ID:          uuid.New(),
		UserID:      userID,
		ExternalID:  externalID,
		AmountMinor: amountMinor,
		Currency:    currency,
		Status:      SubscriptionIncomplete,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Activate transitions the subscription to active.
// Idempotent: re-activating an active subscription only refreshes UpdatedAt.
func (s *Subscription) Activate() {
	s.Status = SubscriptionActive
	s.UpdatedAt = time.Now().UTC()
}

// UpdateStatus applies a generic status transition, replacing the next
// billing date. Callers pass nil to clear the billing date on failure paths.
func (s *Subscription) UpdateStatus(status SubscriptionStatus, nextBillingAt *time.Time) {
	s.Status = status
	s.NextBillingAt = nextBillingAt
	s.UpdatedAt = time.Now().UTC()
}

// Cancel transitions the subscription to canceled and clears the billing
// date. Canceling an already-canceled subscription is a no-op that still
// succeeds.
func (s *Subscription) Cancel() {
	s.Status = SubscriptionCanceled
	s.NextBillingAt = nil
	s.UpdatedAt = time.Now().UTC()
}

// SetExternalID reassigns the gateway correlation token. Used when a
// recurring-charge callback matched via payment_id and the stored order id
// needs to follow the gateway's newer identifier.
func (s *Subscription) SetExternalID(externalID string) {
	s.ExternalID = externalID
	s.UpdatedAt = time.Now().UTC()
}

// SetNextBillingDate replaces the next billing date.
func (s *Subscription) SetNextBillingDate(next time.Time) {
	s.NextBillingAt = &next
	s.UpdatedAt = time.Now().UTC()
}

// IsLive reports whether the subscription occupies the user's single
// live-subscription slot (active or still completing checkout).
func (s *Subscription) IsLive() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionIncomplete
}
