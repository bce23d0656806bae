package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSubscriptionStartsIncomplete(t *testing.T) {
	sub := NewSubscription(uuid.New(), 2500, CurrencyGEL, "ord-1")

	if sub.Status != SubscriptionIncomplete {
		t.Errorf("Status = %q, want incomplete", sub.Status)
	}
	if !sub.IsLive() {
		t.Error("incomplete subscription should occupy the live slot")
	}
	if sub.NextBillingAt != nil {
		t.Error("no billing date before activation")
	}
}

func TestLifecycleTransitions(t *testing.T) {
	sub := NewSubscription(uuid.New(), 2500, CurrencyGEL, "ord-1")

	sub.Activate()
	if sub.Status != SubscriptionActive {
		t.Fatalf("Status = %q after Activate", sub.Status)
	}

	// Failed charge.
	sub.UpdateStatus(SubscriptionPastDue, nil)
	if sub.Status != SubscriptionPastDue || sub.NextBillingAt != nil {
		t.Fatalf("past_due transition: status=%q billing=%v", sub.Status, sub.NextBillingAt)
	}
	if sub.IsLive() {
		t.Error("past_due subscription should not hold the live slot")
	}

	// A later successful charge reactivates.
	sub.Activate()
	next := time.Now().UTC().AddDate(0, 1, 0)
	sub.SetNextBillingDate(next)
	if sub.Status != SubscriptionActive || sub.NextBillingAt == nil {
		t.Fatalf("reactivation: status=%q billing=%v", sub.Status, sub.NextBillingAt)
	}

	sub.Cancel()
	if sub.Status != SubscriptionCanceled || sub.NextBillingAt != nil {
		t.Fatalf("cancel: status=%q billing=%v", sub.Status, sub.NextBillingAt)
	}

	// Canceling again stays canceled.
	sub.Cancel()
	if sub.Status != SubscriptionCanceled {
		t.Errorf("double cancel: status=%q", sub.Status)
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	sub := NewSubscription(uuid.New(), 1000, CurrencyGEL, "ord-2")
	sub.Activate()
	before := sub.Status
	sub.Activate()
	if sub.Status != before {
		t.Errorf("Status changed on re-activation: %q", sub.Status)
	}
}

func TestSetExternalID(t *testing.T) {
	sub := NewSubscription(uuid.New(), 1000, CurrencyGEL, "ord-old")
	sub.SetExternalID("ord-new")
	if sub.ExternalID != "ord-new" {
		t.Errorf("ExternalID = %q", sub.ExternalID)
	}
}
