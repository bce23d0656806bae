package gateway

import (
	"context"
	"fmt"
)

// Provider defines the interface to the external card-payment processor.
// The production implementation is FlittClient; tests use MockProvider.
type Provider interface {
	// CreateCheckout asks the gateway for a hosted recurring-payment page.
	// No local state is written before the redirect: the payer identity
	// travels inside merchant_data and comes back in the callback.
	CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error)

	// CancelSubscription issues a "stop" action for the gateway-side
	// subscription keyed by externalID. A remote failure status returns
	// (false, nil); only transport-level problems return an error.
	CancelSubscription(ctx context.Context, externalID string) (bool, error)

	// VerifySignature authenticates an inbound callback against the
	// configured shared secret.
	VerifySignature(callback map[string]string) bool
}

// CreateCheckoutParams describes one recurring checkout request.
type CreateCheckoutParams struct {
	// AmountMinor is the recurring charge in minor currency units.
	AmountMinor int64

	// Currency is an ISO 4217 code, e.g. "GEL".
	Currency string

	// Email, Name and LastName identify the payer; they are embedded in
	// merchant_data so the webhook can provision a user without any prior
	// database write.
	Email    string
	Name     string
	LastName string

	// Description appears on the hosted checkout page.
	Description string

	// OneTime requests a plain checkout with no recurring agreement.
	OneTime bool
}

// Checkout is the gateway's answer to a checkout request.
type Checkout struct {
	// URL is the hosted payment page to redirect the payer to.
	URL string

	// OrderID is the merchant-generated order id; the success callback
	// carries it back as order_id.
	OrderID string

	// PaymentID is the gateway-assigned payment id for the checkout.
	PaymentID string
}

// Error carries the remote error envelope from a failed gateway request.
type Error struct {
	// Code is the gateway's numeric error code, zero when unknown.
	Code int

	// Message is the gateway's error description.
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}
