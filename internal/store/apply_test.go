package store

import (
	"context"
	"testing"

	"github.com/settleio/settle/internal/domain"
)

func TestApplyPayment_AppliesAllEffects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)
	if err := s.SetPaymentRef(ctx, "order-1", "pi_1"); err != nil {
		t.Fatalf("SetPaymentRef() failed: %v", err)
	}
	if _, _, err := s.ClaimEvent(ctx, "evt_1", domain.PaymentEventSucceeded); err != nil {
		t.Fatalf("ClaimEvent() failed: %v", err)
	}

	if err := s.ApplyPayment(ctx, "order-1", testPaymentEvent("evt_1", "pi_1")); err != nil {
		t.Fatalf("ApplyPayment() failed: %v", err)
	}

	order, err := s.GetOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if order.Status != domain.OrderPaid {
		t.Errorf("order status = %q, want %q", order.Status, domain.OrderPaid)
	}

	events, err := s.ListOrderEvents(ctx, "order-1")
	if err != nil {
		t.Fatalf("ListOrderEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d audit events, want 1", len(events))
	}
	if events[0].ReferenceID != "evt_1" {
		t.Errorf("reference id = %q, want %q", events[0].ReferenceID, "evt_1")
	}
	if events[0].Metadata["payment_intent_id"] != "pi_1" {
		t.Errorf("metadata payment_intent_id = %q, want %q",
			events[0].Metadata["payment_intent_id"], "pi_1")
	}

	pe, err := s.GetProcessedEvent(ctx, "evt_1")
	if err != nil {
		t.Fatalf("GetProcessedEvent() failed: %v", err)
	}
	if pe.Status != domain.EventCompleted {
		t.Errorf("ledger status = %q, want %q", pe.Status, domain.EventCompleted)
	}
}

// TestApplyPayment_Idempotent verifies that re-applying the same event -
// crash-retry or concurrent duplicate - converges on the same state.
func TestApplyPayment_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)
	if err := s.SetPaymentRef(ctx, "order-1", "pi_1"); err != nil {
		t.Fatalf("SetPaymentRef() failed: %v", err)
	}
	if _, _, err := s.ClaimEvent(ctx, "evt_1", domain.PaymentEventSucceeded); err != nil {
		t.Fatalf("ClaimEvent() failed: %v", err)
	}

	ev := testPaymentEvent("evt_1", "pi_1")
	for i := 0; i < 3; i++ {
		if err := s.ApplyPayment(ctx, "order-1", ev); err != nil {
			t.Fatalf("ApplyPayment() iteration %d failed: %v", i, err)
		}
	}

	events, err := s.ListOrderEvents(ctx, "order-1")
	if err != nil {
		t.Fatalf("ListOrderEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d audit events, want exactly 1", len(events))
	}

	order, err := s.GetOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if order.Status != domain.OrderPaid {
		t.Errorf("order status = %q, want %q", order.Status, domain.OrderPaid)
	}
}
