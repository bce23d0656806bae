package service

import (
	"github.com/sinatle/donation/internal/domain"
)

// Webhook reconciliation errors
var (
	ErrSignatureInvalid = domain.Errorf(domain.EUNAUTHORIZED, "", "Callback signature is invalid")
	ErrMissingParameter = domain.Errorf(domain.EINVALID, "", "Required callback parameter is missing")
)

// Subscription errors
var (
	ErrSubscriptionNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Subscription not found")
	ErrUserAlreadyExists      = domain.Errorf(domain.ECONFLICT, "", "User already has a live subscription")
	ErrCheckoutURLUnavailable = domain.Errorf(domain.EPAYMENT, "", "Unable to generate checkout URL")
	ErrNotSubscriptionOwner   = domain.Errorf(domain.EFORBIDDEN, "", "Current user is not the subscription creator")
	ErrMissingExternalID      = domain.Errorf(domain.EINVALID, "", "Subscription external id is missing")
)

// User errors
var (
	ErrUserNotFound = domain.Errorf(domain.ENOTFOUND, "", "User not found")
)

// Payment errors
var (
	ErrInvalidAmount = domain.Errorf(domain.EINVALID, "", "Amount must be greater than 0")
	ErrMissingEmail  = domain.Errorf(domain.EINVALID, "", "Email is required")
)

// Auth / OTP errors
var (
	ErrOtpInvalid = domain.Errorf(domain.EUNAUTHORIZED, "", "One-time password is invalid or expired")
)
