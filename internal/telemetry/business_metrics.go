package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the donation pipeline.
type BusinessMetrics struct {
	// Checkout funnel
	CheckoutsCreated *prometheus.CounterVec
	CheckoutsFailed  *prometheus.CounterVec

	// Webhooks
	WebhookReceived *prometheus.CounterVec
	WebhookRejected *prometheus.CounterVec
	WebhookLatency  *prometheus.HistogramVec

	// Payments
	PaymentsRecorded *prometheus.CounterVec
	PaymentsReplayed *prometheus.CounterVec
	RevenueCollected *prometheus.CounterVec

	// Subscription lifecycle
	SubscriptionsActivated *prometheus.CounterVec
	SubscriptionsPastDue   *prometheus.CounterVec
	SubscriptionsCanceled  *prometheus.CounterVec

	// Auth
	OtpSent      *prometheus.CounterVec
	Logins       *prometheus.CounterVec
	LoginsFailed *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "donation"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		CheckoutsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkouts_created_total",
				Help:      "Total checkout URLs generated at the gateway",
			},
			[]string{"flow"}, // flow: subscribe, edit
		),
		CheckoutsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkouts_failed_total",
				Help:      "Total checkout requests the gateway refused",
			},
			[]string{"flow"},
		),
		WebhookReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_received_total",
				Help:      "Total gateway callbacks received",
			},
			[]string{"outcome"}, // outcome: success, pending, failure
		),
		WebhookRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_rejected_total",
				Help:      "Total callbacks rejected before reconciliation",
			},
			[]string{"reason"}, // reason: signature, missing_parameter
		),
		WebhookLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_duration_seconds",
				Help:      "Callback reconciliation duration",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"outcome"},
		),
		PaymentsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_recorded_total",
				Help:      "Total ledger rows written",
			},
			[]string{"type"}, // type: one_time, donation, subscription
		),
		PaymentsReplayed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_replayed_total",
				Help:      "Total ledger inserts skipped by the dedupe key",
			},
			[]string{"type"},
		),
		RevenueCollected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "revenue_collected_minor_units_total",
				Help:      "Total collected amount in minor currency units",
			},
			[]string{"currency", "type"},
		),
		SubscriptionsActivated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subscriptions_activated_total",
				Help:      "Total subscription activations, including idempotent re-activations",
			},
			[]string{"path"}, // path: first_charge, recurring
		),
		SubscriptionsPastDue: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subscriptions_past_due_total",
				Help:      "Total transitions into past_due or back to incomplete",
			},
			[]string{"status"},
		),
		SubscriptionsCanceled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subscriptions_canceled_total",
				Help:      "Total subscription cancellations",
			},
			[]string{"flow"}, // flow: unsubscribe, edit
		),
		OtpSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "otp_sent_total",
				Help:      "Total one-time passwords emailed",
			},
			[]string{"result"}, // result: sent, failed
		),
		Logins: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_total",
				Help:      "Total successful OTP logins",
			},
			[]string{},
		),
		LoginsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_failed_total",
				Help:      "Total failed OTP logins",
			},
			[]string{"reason"}, // reason: otp_invalid, user_not_found
		),
	}

	return m
}

// Global instance for easy access from services and handlers.
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
