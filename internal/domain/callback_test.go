package domain

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestParseCallback(t *testing.T) {
	cb := ParseCallback(map[string]string{
		"Order_ID":          "ord-1",
		"payment_id":        "803527632",
		"ORDER_STATUS":      " Approved ",
		"response_status":   "SUCCESS",
		"amount":            "2500",
		"currency":          "gel",
		"masked_card":       "444455XXXXXX1111",
		"next_payment_date": "28.09.2026",
	})

	if cb.OrderID != "ord-1" {
		t.Errorf("OrderID = %q", cb.OrderID)
	}
	if cb.PaymentID != "803527632" {
		t.Errorf("PaymentID = %q", cb.PaymentID)
	}
	if cb.OrderStatus != "approved" || cb.ResponseStatus != "success" {
		t.Errorf("statuses not folded: %q %q", cb.OrderStatus, cb.ResponseStatus)
	}
	if cb.AmountMinor != 2500 {
		t.Errorf("AmountMinor = %d", cb.AmountMinor)
	}
	if cb.Currency != "GEL" {
		t.Errorf("Currency = %q", cb.Currency)
	}
	if cb.NextBillingAt == nil {
		t.Fatal("NextBillingAt not parsed")
	}
	want := time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)
	if !cb.NextBillingAt.Equal(want) {
		t.Errorf("NextBillingAt = %v, want %v", cb.NextBillingAt, want)
	}
}

func TestParseCallbackTolerance(t *testing.T) {
	// Garbage never panics or errors; validation belongs to the engine.
	cb := ParseCallback(map[string]string{
		"amount":            "not-a-number",
		"next_payment_date": "someday",
	})
	if cb.AmountMinor != 0 {
		t.Errorf("AmountMinor = %d, want 0", cb.AmountMinor)
	}
	if cb.NextBillingAt != nil {
		t.Errorf("NextBillingAt = %v, want nil", cb.NextBillingAt)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name           string
		orderStatus    string
		responseStatus string
		expected       CallbackOutcome
	}{
		{"both approved", "approved", "success", OutcomeSuccess},
		{"paid and completed", "paid", "completed", OutcomeSuccess},
		{"order approved but response declined", "approved", "declined", OutcomeFailure},
		{"response success but order declined", "declined", "success", OutcomeFailure},
		{"order pending", "pending", "", OutcomePending},
		{"response processing", "declined", "processing", OutcomePending},
		{"expired", "expired", "failure", OutcomeFailure},
		{"empty statuses", "", "", OutcomeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := &Callback{OrderStatus: tt.orderStatus, ResponseStatus: tt.responseStatus}
			if got := cb.Outcome(); got != tt.expected {
				t.Errorf("Outcome() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMerchantDataRoundTrip(t *testing.T) {
	encoded := EncodeMerchantData(MerchantIdentity{
		Email:    " Donor@Example.COM ",
		Name:     "Nino",
		LastName: "B",
		OrderID:  "ord-7",
	})

	identity, ok := DecodeMerchantData(encoded)
	if !ok {
		t.Fatal("decode failed")
	}
	if identity.Email != "donor@example.com" {
		t.Errorf("Email = %q, want normalized", identity.Email)
	}
	if identity.Name != "Nino" || identity.LastName != "B" || identity.OrderID != "ord-7" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestDecodeMerchantData(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		ok      bool
	}{
		{"empty", "", false},
		{"not base64", "%%%", false},
		{"not json", base64.StdEncoding.EncodeToString([]byte("hello")), false},
		{"json without email", base64.StdEncoding.EncodeToString([]byte(`{"name":"x"}`)), false},
		{"url-safe alphabet", base64.URLEncoding.EncodeToString([]byte(`{"email":"a@b.c"}`)), true},
		{"case-insensitive field names", base64.StdEncoding.EncodeToString([]byte(`{"Email":"a@b.c","LASTNAME":"x"}`)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := DecodeMerchantData(tt.encoded)
			if ok != tt.ok {
				t.Errorf("ok = %t, want %t", ok, tt.ok)
			}
		})
	}
}
