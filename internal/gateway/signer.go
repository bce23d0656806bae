package gateway

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Signer computes and verifies the gateway's canonical-string SHA-1 digest.
// The same scheme signs outbound checkout/cancellation requests and
// authenticates inbound callbacks.
//
// The exact formatting is externally dictated and significant: the remote
// system computes its digest over this literal representation. Nothing
// outside this file may depend on the quoting or spacing rules.
type Signer struct {
	secret string
}

// NewSigner creates a signer bound to the merchant's shared secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign computes the digest over a parameter set: entries whose key is not
// "signature" and whose value is non-empty are sorted by key (byte-wise),
// flattened, and joined with "|" after the secret; the result is the
// lowercase hex SHA-1 of the UTF-8 bytes of that string.
//
// Sign never fails; malformed values flatten to empty strings and drop out.
func (s *Signer) Sign(params map[string]any) string {
	return s.digest(params, map[string]bool{"signature": true})
}

// Verify recomputes the digest over a callback map (excluding the signature
// fields themselves) and compares it to the delivered signature. Returns
// false when the signature is absent, empty, or mismatched - a security
// rejection, not an exceptional condition.
func (s *Signer) Verify(callback map[string]string) bool {
	var delivered string
	for k, v := range callback {
		if strings.EqualFold(k, "signature") {
			delivered = strings.TrimSpace(v)
			break
		}
	}
	if delivered == "" {
		return false
	}

	params := make(map[string]any, len(callback))
	for k, v := range callback {
		params[k] = v
	}

	expected := s.digest(params, map[string]bool{
		"signature":                 true,
		"response_signature_string": true,
	})
	return delivered == expected
}

func (s *Signer) digest(params map[string]any, excluded map[string]bool) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if excluded[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{s.secret}
	for _, k := range keys {
		if v := flatten(params[k]); v != "" {
			parts = append(parts, v)
		}
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// flatten renders a top-level parameter for hashing. Scalars keep their
// native textual representation; nested structures use the gateway's quoted
// canonical form.
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, map[string]string, []any, []string:
		return canonical(t)
	default:
		return fmt.Sprint(t)
	}
}

// canonical serializes a nested structure the way the gateway does before
// hashing: keys sorted, every scalar forced to a quoted string, ":" and ","
// each followed by a single space, double quotes replaced by single quotes.
func canonical(v any) string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, quote(k)+": "+canonical(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = v
		}
		return canonical(m)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, canonical(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, quote(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case nil:
		return quote("")
	default:
		return quote(fmt.Sprint(t))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, `"`, `'`) + "'"
}
