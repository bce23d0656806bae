package domain

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CallbackOutcome is the classified result of a gateway callback.
type CallbackOutcome int

const (
	// OutcomeFailure covers declines, expirations and reversals.
	OutcomeFailure CallbackOutcome = iota

	// OutcomePending covers charges the gateway has not settled yet. Only
	// used to pick the failure sub-status (incomplete vs past_due).
	OutcomePending

	// OutcomeSuccess requires both the order status and the response
	// status to be approved; the two fields come from different layers of
	// the gateway and either can independently signal failure.
	OutcomeSuccess
)

// Order-status values the gateway uses for a settled charge.
var approvedOrderStatuses = map[string]bool{
	"approved":  true,
	"paid":      true,
	"completed": true,
	"succeeded": true,
}

// Response-status values the processing layer uses for an accepted request.
var approvedResponseStatuses = map[string]bool{
	"success":   true,
	"approved":  true,
	"completed": true,
}

var pendingStatuses = map[string]bool{
	"pending":    true,
	"processing": true,
}

// Callback is the typed view of a gateway webhook payload. It is ephemeral:
// parsed per request, never persisted. Signature verification runs over the
// raw string map before this type is ever built, so nothing here needs to
// preserve the delivered literals.
type Callback struct {
	OrderID        string
	PaymentID      string
	OrderStatus    string
	ResponseStatus string
	AmountMinor    int64
	Currency       string
	MerchantData   string
	MaskedCard     string
	NextBillingAt  *time.Time
}

// MerchantIdentity is the payer identity embedded in a checkout request and
// echoed back by the gateway. It is the only source of truth for user
// provisioning during unauthenticated checkout.
type MerchantIdentity struct {
	Email    string
	Name     string
	LastName string
	OrderID  string
}

// Billing-date layouts the gateway has been observed to send.
var billingDateLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ParseCallback decodes a flat string map into a Callback. Keys are matched
// case-insensitively; numbers arrive as their raw textual representation.
// Parsing never fails - missing fields stay zero and are validated by the
// reconciliation engine, which owns the error taxonomy.
func ParseCallback(params map[string]string) *Callback {
	folded := make(map[string]string, len(params))
	for k, v := range params {
		folded[strings.ToLower(k)] = v
	}

	cb := &Callback{
		OrderID:        strings.TrimSpace(folded["order_id"]),
		PaymentID:      strings.TrimSpace(folded["payment_id"]),
		OrderStatus:    strings.ToLower(strings.TrimSpace(folded["order_status"])),
		ResponseStatus: strings.ToLower(strings.TrimSpace(folded["response_status"])),
		Currency:       strings.ToUpper(strings.TrimSpace(folded["currency"])),
		MerchantData:   strings.TrimSpace(folded["merchant_data"]),
		MaskedCard:     strings.TrimSpace(folded["masked_card"]),
	}

	if amount, err := strconv.ParseInt(strings.TrimSpace(folded["amount"]), 10, 64); err == nil {
		cb.AmountMinor = amount
	}

	// next_payment_date is the documented field; older gateway revisions
	// sent next_billing_date.
	raw := folded["next_payment_date"]
	if raw == "" {
		raw = folded["next_billing_date"]
	}
	if raw = strings.TrimSpace(raw); raw != "" {
		for _, layout := range billingDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				t = t.UTC()
				cb.NextBillingAt = &t
				break
			}
		}
	}

	return cb
}

// Outcome classifies the callback. Success requires both status fields to be
// approved; pending is reported when either field says the charge is still
// settling; everything else is a failure.
func (c *Callback) Outcome() CallbackOutcome {
	if approvedOrderStatuses[c.OrderStatus] && approvedResponseStatuses[c.ResponseStatus] {
		return OutcomeSuccess
	}
	if pendingStatuses[c.OrderStatus] || pendingStatuses[c.ResponseStatus] {
		return OutcomePending
	}
	return OutcomeFailure
}

// Identity decodes the base64 merchant_data payload into the payer identity.
// Returns false when the field is absent, undecodable, or carries no email.
func (c *Callback) Identity() (MerchantIdentity, bool) {
	return DecodeMerchantData(c.MerchantData)
}

// DecodeMerchantData decodes a base64-encoded JSON identity payload.
// Field names are matched case-insensitively, which encoding/json already
// guarantees for exported struct fields.
func DecodeMerchantData(encoded string) (MerchantIdentity, bool) {
	if encoded == "" {
		return MerchantIdentity{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some gateways re-encode with URL-safe alphabets on redelivery.
		raw, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return MerchantIdentity{}, false
		}
	}

	var identity struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		LastName string `json:"lastName"`
		OrderID  string `json:"orderId"`
	}
	if err := json.Unmarshal(raw, &identity); err != nil {
		return MerchantIdentity{}, false
	}

	id := MerchantIdentity{
		Email:    NormalizeEmail(identity.Email),
		Name:     strings.TrimSpace(identity.Name),
		LastName: strings.TrimSpace(identity.LastName),
		OrderID:  strings.TrimSpace(identity.OrderID),
	}
	if id.Email == "" {
		return MerchantIdentity{}, false
	}
	return id, true
}

// EncodeMerchantData encodes the payer identity for embedding in a checkout
// request. The gateway echoes it back verbatim in callbacks.
func EncodeMerchantData(id MerchantIdentity) string {
	payload := struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		LastName string `json:"lastName"`
		OrderID  string `json:"orderId,omitempty"`
	}{
		Email:    NormalizeEmail(id.Email),
		Name:     id.Name,
		LastName: id.LastName,
		OrderID:  id.OrderID,
	}

	raw, _ := json.Marshal(payload)
	return base64.StdEncoding.EncodeToString(raw)
}
