package handler

import (
	"log/slog"
	"net/http"

	"github.com/sinatle/donation/internal/service"
)

// PaymentHandler exposes one-time donation checkout.
type PaymentHandler struct {
	payments service.PaymentService
	logger   *slog.Logger
}

func NewPaymentHandler(payments service.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{payments: payments, logger: logger}
}

type oneTimePaymentRequest struct {
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Email       string `json:"email" validate:"omitempty,email"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
}

// Create opens a one-time donation checkout. Public and anonymous-friendly:
// the email is optional.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req oneTimePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	url, err := h.payments.CreateCheckout(r.Context(), service.OneTimePaymentParams{
		AmountMinor: req.AmountMinor,
		Email:       req.Email,
		Name:        req.Name,
		LastName:    req.LastName,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponse{CheckoutURL: url})
}
