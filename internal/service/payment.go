package service

import (
	"context"
	"log/slog"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/gateway"
	"github.com/sinatle/donation/internal/telemetry"
)

// PaymentService handles one-time donations: a single hosted checkout with
// no recurring agreement behind it.
type PaymentService interface {
	// CreateCheckout opens a one-time payment page and returns its URL.
	CreateCheckout(ctx context.Context, params OneTimePaymentParams) (string, error)
}

type OneTimePaymentParams struct {
	AmountMinor int64
	Email       string
	Name        string
	LastName    string
}

type paymentService struct {
	payments PaymentStore
	gateway  gateway.Provider
	currency domain.Currency
	logger   *slog.Logger
}

func NewPaymentService(payments PaymentStore, gw gateway.Provider, defaultCurrency domain.Currency, logger *slog.Logger) PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &paymentService{
		payments: payments,
		gateway:  gw,
		currency: defaultCurrency,
		logger:   logger,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, params OneTimePaymentParams) (string, error) {
	const op = "payment.create_checkout"

	if params.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	email := domain.NormalizeEmail(params.Email)

	checkout, err := s.gateway.CreateCheckout(ctx, gateway.CreateCheckoutParams{
		AmountMinor: params.AmountMinor,
		Currency:    string(s.currency),
		Email:       email,
		Name:        params.Name,
		LastName:    params.LastName,
		Description: "One-time donation",
		OneTime:     true,
	})
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.CheckoutsFailed.WithLabelValues("one_time").Inc()
		}
		return "", domain.WrapError(err, domain.EPAYMENT, op, "Payment gateway rejected checkout request")
	}
	if checkout == nil || checkout.URL == "" {
		return "", ErrCheckoutURLUnavailable
	}

	payment := domain.NewPayment(params.AmountMinor, email, domain.PaymentOneTime, s.currency)
	payment.ExternalPaymentID = checkout.OrderID
	if _, err := s.payments.Create(ctx, payment); err != nil {
		return "", domain.Internal(err, op, "failed to record payment")
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutsCreated.WithLabelValues("one_time").Inc()
		telemetry.Business.PaymentsRecorded.WithLabelValues(string(domain.PaymentOneTime)).Inc()
	}

	s.logger.Info("one-time checkout created",
		slog.String("order_id", checkout.OrderID),
		slog.Int64("amount_minor", params.AmountMinor),
	)

	return checkout.URL, nil
}
