package gateway

import (
	"testing"
)

func TestSign(t *testing.T) {
	s := NewSigner("test_secret")

	tests := []struct {
		name     string
		params   map[string]any
		expected string
	}{
		{
			name: "sorted scalar params",
			params: map[string]any{
				"order_id": "abc123",
				"amount":   "2500",
				"currency": "GEL",
			},
			// sha1("test_secret|2500|GEL|abc123")
			expected: "8cd8d68e91dcd2af8ddd050b5da440e2e4ade2f7",
		},
		{
			name: "empty values and signature key excluded",
			params: map[string]any{
				"order_id":      "ord1",
				"amount":        "100",
				"merchant_data": "",
				"signature":     "deadbeef",
			},
			// sha1("test_secret|100|ord1")
			expected: "b4c7bd9ce309560d0c80ffb6a4eb0754f34166f9",
		},
		{
			name: "nested structure in canonical quoted form",
			params: map[string]any{
				"order_id": "x",
				"recurring_data": map[string]any{
					"amount": 2500,
					"every":  1,
					"period": "month",
				},
			},
			// sha1("test_secret|x|{'amount': '2500', 'every': '1', 'period': 'month'}")
			expected: "353655235c9c3c9a8fc2d48fd4d668b4d47541c6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sign(tt.params); got != tt.expected {
				t.Errorf("Sign() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestSignIntegerAmountMatchesString(t *testing.T) {
	s := NewSigner("test_secret")

	asInt := s.Sign(map[string]any{"order_id": "abc123", "amount": int64(2500), "currency": "GEL"})
	asString := s.Sign(map[string]any{"order_id": "abc123", "amount": "2500", "currency": "GEL"})

	if asInt != asString {
		t.Errorf("integer and string amounts should hash identically: %s != %s", asInt, asString)
	}
}

func TestVerify(t *testing.T) {
	s := NewSigner("test_secret")

	valid := map[string]string{
		"order_id":        "ord42",
		"order_status":    "approved",
		"response_status": "success",
		"amount":          "2500",
		// sha1("test_secret|2500|ord42|approved|success")
		"signature": "e2ea2591c73102132f6ed2b2dc4afbc9bced5915",
	}

	tests := []struct {
		name     string
		mutate   func(map[string]string)
		expected bool
	}{
		{
			name:     "valid signature",
			mutate:   func(m map[string]string) {},
			expected: true,
		},
		{
			name: "tampered amount",
			mutate: func(m map[string]string) {
				m["amount"] = "9999"
			},
			expected: false,
		},
		{
			name: "missing signature",
			mutate: func(m map[string]string) {
				delete(m, "signature")
			},
			expected: false,
		},
		{
			name: "empty signature",
			mutate: func(m map[string]string) {
				m["signature"] = ""
			},
			expected: false,
		},
		{
			name: "response_signature_string is ignored",
			mutate: func(m map[string]string) {
				m["response_signature_string"] = "secret|whatever|the|gateway|echoes"
			},
			expected: true,
		},
		{
			name: "case-insensitive signature key",
			mutate: func(m map[string]string) {
				sig := m["signature"]
				delete(m, "signature")
				m["Signature"] = sig
			},
			expected: true,
		},
		{
			name: "empty parameters drop out of the digest",
			mutate: func(m map[string]string) {
				m["rectoken"] = ""
				m["masked_card"] = ""
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := make(map[string]string, len(valid))
			for k, v := range valid {
				params[k] = v
			}
			tt.mutate(params)

			if got := s.Verify(params); got != tt.expected {
				t.Errorf("Verify() = %t, want %t", got, tt.expected)
			}
		})
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s := NewSigner("another_secret")

	params := map[string]any{
		"order_id":    "round-trip-1",
		"merchant_id": 1549901,
		"amount":      1000,
		"currency":    "GEL",
	}
	sig := s.Sign(params)

	callback := map[string]string{
		"order_id":    "round-trip-1",
		"merchant_id": "1549901",
		"amount":      "1000",
		"currency":    "GEL",
		"signature":   sig,
	}
	if !s.Verify(callback) {
		t.Error("signature produced by Sign should verify over the equivalent string map")
	}
}

func TestCanonicalQuoting(t *testing.T) {
	got := canonical(map[string]any{
		"note": `say "hello"`,
		"tags": []string{"a", "b"},
	})
	want := `{'note': 'say 'hello'', 'tags': ['a', 'b']}`
	if got != want {
		t.Errorf("canonical() = %s, want %s", got, want)
	}
}
