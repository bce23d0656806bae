package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/middleware"
	"github.com/sinatle/donation/internal/service"
)

// SubscriptionHandler exposes the subscription lifecycle endpoints.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

func NewSubscriptionHandler(subscriptions service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

type subscribeRequest struct {
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// Subscribe starts a recurring-donation checkout. Public: the payer has no
// account yet at this point.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	url, err := h.subscriptions.Subscribe(r.Context(), service.SubscribeParams{
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

type editSubscriptionRequest struct {
	AmountMinor int64 `json:"amount_minor" validate:"required,gt=0"`
}

// Edit replaces the subscription amount via cancel-and-resubscribe.
func (h *SubscriptionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		ErrorResponse(w, r, domain.Unauthorized("subscription.edit", "Invalid token subject"))
		return
	}

	subscriptionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("subscription.edit", "Invalid subscription id"))
		return
	}

	var req editSubscriptionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	url, err := h.subscriptions.EditSubscription(r.Context(), userID, subscriptionID, req.AmountMinor)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse{CheckoutURL: url})
}

// Unsubscribe cancels the caller's subscription.
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		ErrorResponse(w, r, domain.Unauthorized("subscription.unsubscribe", "Invalid token subject"))
		return
	}

	subscriptionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("subscription.unsubscribe", "Invalid subscription id"))
		return
	}

	canceled, err := h.subscriptions.Unsubscribe(r.Context(), subscriptionID, userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"canceled": canceled})
}
