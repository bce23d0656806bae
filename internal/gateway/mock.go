package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MockProvider is a mock gateway for testing. It simulates successful
// checkout and cancellation flows without network access.
type MockProvider struct {
	// CreateCheckoutFunc allows customizing checkout behavior.
	CreateCheckoutFunc func(ctx context.Context, params CreateCheckoutParams) (*Checkout, error)

	// CancelSubscriptionFunc allows customizing cancellation behavior.
	CancelSubscriptionFunc func(ctx context.Context, externalID string) (bool, error)

	// VerifySignatureFunc allows customizing signature verification.
	// The default accepts every callback.
	VerifySignatureFunc func(callback map[string]string) bool

	// Checkouts stores created checkouts keyed by order id.
	Checkouts map[string]*Checkout

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// Compile-time check that MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock gateway provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Checkouts: make(map[string]*Checkout),
	}
}

// CreateCheckout creates a mock checkout.
func (m *MockProvider) CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckout(%d, %s)", params.AmountMinor, params.Email))

	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, params)
	}

	orderID := strings.ReplaceAll(uuid.NewString(), "-", "")
	checkout := &Checkout{
		URL:       "https://checkout.example/" + orderID,
		OrderID:   orderID,
		PaymentID: uuid.NewString(),
	}
	m.Checkouts[orderID] = checkout
	return checkout, nil
}

// CancelSubscription cancels a mock subscription.
func (m *MockProvider) CancelSubscription(ctx context.Context, externalID string) (bool, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CancelSubscription(%s)", externalID))

	if m.CancelSubscriptionFunc != nil {
		return m.CancelSubscriptionFunc(ctx, externalID)
	}
	return true, nil
}

// VerifySignature verifies a mock callback signature.
func (m *MockProvider) VerifySignature(callback map[string]string) bool {
	m.CallLog = append(m.CallLog, "VerifySignature")

	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(callback)
	}
	return true
}
