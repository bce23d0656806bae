package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/gateway"
	"github.com/sinatle/donation/internal/telemetry"
)

// subscriptionService implements SubscriptionService.
//
// All dependencies are injected and the struct holds no mutable state, so a
// single instance is safe under concurrent callbacks for different
// subscriptions. Replayed callbacks for the same subscription are made safe
// by the ledger dedupe key (PaymentStore.Create) and by Activate being
// idempotent.
type subscriptionService struct {
	subs     SubscriptionStore
	users    UserStore
	payments PaymentStore
	gateway  gateway.Provider
	currency domain.Currency
	logger   *slog.Logger
}

// NewSubscriptionService creates the subscription service. defaultCurrency
// is used when a callback carries no currency field.
func NewSubscriptionService(
	subs SubscriptionStore,
	users UserStore,
	payments PaymentStore,
	gw gateway.Provider,
	defaultCurrency domain.Currency,
	logger *slog.Logger,
) SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &subscriptionService{
		subs:     subs,
		users:    users,
		payments: payments,
		gateway:  gw,
		currency: defaultCurrency,
		logger:   logger,
	}
}

// Subscribe starts a hosted checkout. Deliberately writes nothing locally:
// the subscription row is created by the first successful callback, so an
// abandoned checkout leaves no orphan.
func (s *subscriptionService) Subscribe(ctx context.Context, params SubscribeParams) (string, error) {
	const op = "subscription.subscribe"

	email := domain.NormalizeEmail(params.Email)
	if email == "" {
		return "", ErrMissingEmail
	}
	if params.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}

	// One live subscription per user, enforced at subscribe time. The
	// partial unique index on the subscriptions table backs this check up
	// under concurrent subscribes.
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", domain.Internal(err, op, "failed to look up user")
	}
	if user != nil {
		live, err := s.subs.GetLiveByUserID(ctx, user.ID)
		if err != nil {
			return "", domain.Internal(err, op, "failed to look up live subscription")
		}
		if live != nil && (params.IgnoreSubscriptionID == nil || live.ID != *params.IgnoreSubscriptionID) {
			return "", ErrUserAlreadyExists
		}
	}

	checkout, err := s.gateway.CreateCheckout(ctx, gateway.CreateCheckoutParams{
		AmountMinor: params.AmountMinor,
		Currency:    string(s.currency),
		Email:       email,
		Name:        params.Name,
		LastName:    params.LastName,
		Description: "Monthly donation",
	})
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.CheckoutsFailed.WithLabelValues("subscribe").Inc()
		}
		return "", domain.WrapError(err, domain.EPAYMENT, op, "Payment gateway rejected checkout request")
	}
	if checkout == nil || checkout.URL == "" {
		return "", ErrCheckoutURLUnavailable
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutsCreated.WithLabelValues("subscribe").Inc()
	}

	s.logger.Info("subscription checkout created",
		slog.String("order_id", checkout.OrderID),
		slog.Int64("amount_minor", params.AmountMinor),
	)

	return checkout.URL, nil
}

// EditSubscription swaps the amount by canceling the old subscription and
// opening a fresh checkout. The old id is exempted from the live-subscription
// check so the two flows do not collide in the transition window.
func (s *subscriptionService) EditSubscription(ctx context.Context, userID, subscriptionID uuid.UUID, newAmountMinor int64) (string, error) {
	const op = "subscription.edit"

	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return "", domain.Internal(err, op, "failed to look up subscription")
	}
	if sub == nil {
		return "", ErrSubscriptionNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", domain.Internal(err, op, "failed to look up user")
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	canceled, err := s.Unsubscribe(ctx, subscriptionID, userID)
	if err != nil {
		return "", err
	}
	if !canceled {
		// The gateway refused the stop; the old subscription stays as-is
		// and the new checkout proceeds with the old id exempted.
		s.logger.Warn("edit: gateway refused cancellation, continuing with new checkout",
			slog.String("subscription_id", subscriptionID.String()),
		)
	}

	return s.Subscribe(ctx, SubscribeParams{
		AmountMinor:          newAmountMinor,
		Email:                user.Email,
		Name:                 user.Name,
		LastName:             user.LastName,
		IgnoreSubscriptionID: &subscriptionID,
	})
}

// Unsubscribe stops the recurring charge. Local state changes only when the
// gateway confirms - a remote refusal returns false with state untouched.
func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriptionID, userID uuid.UUID) (bool, error) {
	const op = "subscription.unsubscribe"

	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return false, domain.Internal(err, op, "failed to look up subscription")
	}
	if sub == nil {
		return false, ErrSubscriptionNotFound
	}
	if sub.UserID != userID {
		return false, ErrNotSubscriptionOwner
	}
	if sub.Status == domain.SubscriptionCanceled {
		// Canceling twice succeeds without another gateway round-trip.
		return true, nil
	}
	if sub.ExternalID == "" {
		return false, ErrMissingExternalID
	}

	ok, err := s.gateway.CancelSubscription(ctx, sub.ExternalID)
	if err != nil {
		return false, domain.Internal(err, op, "gateway cancellation failed")
	}
	if !ok {
		return false, nil
	}

	sub.Cancel()
	if err := s.subs.Update(ctx, sub); err != nil {
		return false, domain.Internal(err, op, "failed to persist cancellation")
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsCanceled.WithLabelValues("unsubscribe").Inc()
	}

	s.logger.Info("subscription canceled",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("external_id", sub.ExternalID),
	)

	return true, nil
}

// HandleCallback reconciles one gateway webhook with local state.
//
// The steps run in order and each is a hard precondition for the next:
// authenticate, extract, classify, correlate, transition, record. Any
// persistence error propagates so the gateway re-delivers the callback;
// re-entry is safe because activation is idempotent and the ledger insert
// carries a dedupe key.
func (s *subscriptionService) HandleCallback(ctx context.Context, params map[string]string) error {
	const op = "subscription.reconcile"
	start := time.Now()

	// Step 1: authenticate. Nothing in the payload is trusted before this.
	if !s.gateway.VerifySignature(params) {
		if telemetry.Business != nil {
			telemetry.Business.WebhookRejected.WithLabelValues("signature").Inc()
		}
		return ErrSignatureInvalid
	}

	// Step 2: extract.
	cb := domain.ParseCallback(params)
	if cb.OrderID == "" {
		if telemetry.Business != nil {
			telemetry.Business.WebhookRejected.WithLabelValues("missing_parameter").Inc()
		}
		return ErrMissingParameter
	}

	// Step 3: classify.
	outcome := cb.Outcome()
	outcomeLabel := map[domain.CallbackOutcome]string{
		domain.OutcomeSuccess: "success",
		domain.OutcomePending: "pending",
		domain.OutcomeFailure: "failure",
	}[outcome]

	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(outcomeLabel).Inc()
		defer func() {
			telemetry.Business.WebhookLatency.WithLabelValues(outcomeLabel).Observe(time.Since(start).Seconds())
		}()
	}

	logger := s.logger.With(
		slog.String("order_id", cb.OrderID),
		slog.String("payment_id", cb.PaymentID),
		slog.String("outcome", outcomeLabel),
	)

	// A successful charge cannot be reconciled without its amount: activating
	// a subscription or writing a ledger row at zero would corrupt both.
	// Rejected before any lookup or write.
	if outcome == domain.OutcomeSuccess && cb.AmountMinor <= 0 {
		if telemetry.Business != nil {
			telemetry.Business.WebhookRejected.WithLabelValues("missing_parameter").Inc()
		}
		return ErrMissingParameter
	}

	// Step 4: correlate. The gateway uses order_id for checkout callbacks
	// and may key recurring charges by payment_id, and an earlier callback
	// may have stored either one.
	sub, err := s.subs.GetByExternalID(ctx, cb.OrderID)
	if err != nil {
		return domain.Internal(err, op, "failed to look up subscription by order id")
	}
	if sub == nil && cb.PaymentID != "" {
		sub, err = s.subs.GetByExternalID(ctx, cb.PaymentID)
		if err != nil {
			return domain.Internal(err, op, "failed to look up subscription by payment id")
		}
	}

	if outcome != domain.OutcomeSuccess {
		return s.reconcileFailure(ctx, cb, sub, outcome, logger)
	}
	if sub == nil {
		return s.reconcileFirstCharge(ctx, cb, logger)
	}
	return s.reconcileRecurringCharge(ctx, cb, sub, logger)
}

// reconcileFailure marks a matched subscription incomplete (still settling)
// or past due. A failure for an unknown order is a silent no-op: there is
// nothing to mark as failed.
func (s *subscriptionService) reconcileFailure(ctx context.Context, cb *domain.Callback, sub *domain.Subscription, outcome domain.CallbackOutcome, logger *slog.Logger) error {
	const op = "subscription.reconcile"

	if sub == nil {
		logger.Info("failure callback for unknown order, nothing to update")
		return nil
	}

	status := domain.SubscriptionPastDue
	if outcome == domain.OutcomePending {
		status = domain.SubscriptionIncomplete
	}

	sub.UpdateStatus(status, nil)
	if err := s.subs.Update(ctx, sub); err != nil {
		return domain.Internal(err, op, "failed to persist failure transition")
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsPastDue.WithLabelValues(string(status)).Inc()
	}

	logger.Info("subscription marked after failed charge",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("status", string(status)),
	)
	return nil
}

// reconcileFirstCharge handles a successful callback with no matching
// subscription: the first charge after checkout. The payer identity comes
// exclusively from the merchant_data round-trip.
func (s *subscriptionService) reconcileFirstCharge(ctx context.Context, cb *domain.Callback, logger *slog.Logger) error {
	const op = "subscription.reconcile"

	identity, ok := cb.Identity()
	if !ok {
		// Success cannot be reconciled without an identity.
		if telemetry.Business != nil {
			telemetry.Business.WebhookRejected.WithLabelValues("missing_parameter").Inc()
		}
		return ErrMissingParameter
	}

	user, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return domain.Internal(err, op, "failed to look up user")
	}
	if user == nil {
		user = domain.NewUser(identity.Email, identity.Name, identity.LastName)
		if err := s.users.Create(ctx, user); err != nil {
			return domain.Internal(err, op, "failed to create user")
		}
		logger.Info("user provisioned from merchant data", slog.String("user_id", user.ID.String()))
	}

	sub := domain.NewSubscription(user.ID, cb.AmountMinor, s.callbackCurrency(cb), cb.OrderID)
	sub.MaskedCard = cb.MaskedCard
	sub.Activate()
	sub.SetNextBillingDate(s.nextBillingDate(cb))

	if err := s.subs.Create(ctx, sub); err != nil {
		return domain.Internal(err, op, "failed to create subscription")
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsActivated.WithLabelValues("first_charge").Inc()
	}

	logger.Info("subscription activated from first charge",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("user_id", user.ID.String()),
	)

	return s.recordPayment(ctx, cb, sub, user.Email)
}

// reconcileRecurringCharge handles a successful callback for an existing
// subscription. Safe under replay: re-activation is a no-op on status and
// the ledger insert dedupes on the gateway payment id.
func (s *subscriptionService) reconcileRecurringCharge(ctx context.Context, cb *domain.Callback, sub *domain.Subscription, logger *slog.Logger) error {
	const op = "subscription.reconcile"

	// The match may have come via payment_id; follow the gateway's newer
	// order id so the next callback correlates directly.
	if sub.ExternalID != cb.OrderID {
		sub.SetExternalID(cb.OrderID)
	}
	if cb.MaskedCard != "" {
		sub.MaskedCard = cb.MaskedCard
	}

	sub.Activate()
	sub.SetNextBillingDate(s.nextBillingDate(cb))

	if err := s.subs.Update(ctx, sub); err != nil {
		return domain.Internal(err, op, "failed to persist activation")
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsActivated.WithLabelValues("recurring").Inc()
	}

	email := ""
	if identity, ok := cb.Identity(); ok {
		email = identity.Email
	} else {
		user, err := s.users.GetByID(ctx, sub.UserID)
		if err != nil {
			return domain.Internal(err, op, "failed to look up subscription owner")
		}
		if user != nil {
			email = user.Email
		}
	}

	logger.Info("subscription re-activated by recurring charge",
		slog.String("subscription_id", sub.ID.String()),
	)

	return s.recordPayment(ctx, cb, sub, email)
}

// recordPayment appends the ledger row for a successful charge. A replayed
// callback hits the (subscription id, external payment id) dedupe key and
// becomes a logged no-op instead of a duplicate row.
func (s *subscriptionService) recordPayment(ctx context.Context, cb *domain.Callback, sub *domain.Subscription, email string) error {
	const op = "subscription.reconcile"

	payment := domain.NewPayment(cb.AmountMinor, email, domain.PaymentSubscription, sub.Currency)
	payment.UserID = &sub.UserID
	payment.SubscriptionID = &sub.ID
	payment.ExternalPaymentID = cb.PaymentID
	if payment.ExternalPaymentID == "" {
		payment.ExternalPaymentID = cb.OrderID
	}

	inserted, err := s.payments.Create(ctx, payment)
	if err != nil {
		return domain.Internal(err, op, "failed to record payment")
	}
	if !inserted {
		s.logger.Info("payment already recorded, replay ignored",
			slog.String("subscription_id", sub.ID.String()),
			slog.String("external_payment_id", payment.ExternalPaymentID),
		)
		if telemetry.Business != nil {
			telemetry.Business.PaymentsReplayed.WithLabelValues(string(domain.PaymentSubscription)).Inc()
		}
		return nil
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentsRecorded.WithLabelValues(string(domain.PaymentSubscription)).Inc()
		telemetry.Business.RevenueCollected.WithLabelValues(string(sub.Currency), string(domain.PaymentSubscription)).Add(float64(payment.AmountMinor))
	}
	return nil
}

func (s *subscriptionService) callbackCurrency(cb *domain.Callback) domain.Currency {
	switch domain.Currency(cb.Currency) {
	case domain.CurrencyGEL, domain.CurrencyUSD, domain.CurrencyEUR:
		return domain.Currency(cb.Currency)
	default:
		return s.currency
	}
}

// nextBillingDate takes the gateway's billing date when the callback carries
// one, otherwise one month from now.
func (s *subscriptionService) nextBillingDate(cb *domain.Callback) time.Time {
	if cb.NextBillingAt != nil {
		return *cb.NextBillingAt
	}
	return time.Now().UTC().AddDate(0, 1, 0)
}
