package domain

import (
	"time"

	"github.com/google/uuid"
)

// OtpTTL is how long a one-time password stays redeemable.
const OtpTTL = 10 * time.Minute

// Otp is a single-use email verification code.
type Otp struct {
	ID        uuid.UUID
	Email     string
	Code      string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewOtp creates a code bound to a normalized email.
func NewOtp(email, code string) *Otp {
	now := time.Now().UTC()
	return &Otp{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(OtpTTL),
	}
}

// Redeemable reports whether the code can still be used.
func (o *Otp) Redeemable(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}

// MarkUsed burns the code.
func (o *Otp) MarkUsed() {
	o.Used = true
}
