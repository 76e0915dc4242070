package store

import (
	"context"
	"testing"

	"github.com/settleio/settle/internal/domain"
)

func TestAppendOrderEvent_AndList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)

	err := s.AppendOrderEvent(ctx, domain.OrderEvent{
		OrderID:     "order-1",
		EventType:   domain.AuditPaymentConfirmed,
		Source:      domain.SourceWebhook,
		ReferenceID: "evt_1",
		Metadata:    map[string]string{"amount": "5000", "currency": "inr"},
	})
	if err != nil {
		t.Fatalf("AppendOrderEvent() failed: %v", err)
	}

	events, err := s.ListOrderEvents(ctx, "order-1")
	if err != nil {
		t.Fatalf("ListOrderEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.EventType != domain.AuditPaymentConfirmed {
		t.Errorf("event type = %q, want %q", ev.EventType, domain.AuditPaymentConfirmed)
	}
	if ev.Source != domain.SourceWebhook {
		t.Errorf("source = %q, want %q", ev.Source, domain.SourceWebhook)
	}
	if ev.ReferenceID != "evt_1" {
		t.Errorf("reference id = %q, want %q", ev.ReferenceID, "evt_1")
	}
	if ev.Metadata["amount"] != "5000" || ev.Metadata["currency"] != "inr" {
		t.Errorf("metadata = %v, want amount/currency preserved", ev.Metadata)
	}
}

// TestAppendOrderEvent_DuplicateReference verifies the audit-level
// idempotency guard: the same (order, external event) pair inserts once.
func TestAppendOrderEvent_DuplicateReference(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)

	ev := domain.OrderEvent{
		OrderID:     "order-1",
		EventType:   domain.AuditPaymentConfirmed,
		Source:      domain.SourceWebhook,
		ReferenceID: "evt_1",
	}
	for i := 0; i < 3; i++ {
		if err := s.AppendOrderEvent(ctx, ev); err != nil {
			t.Fatalf("AppendOrderEvent() iteration %d failed: %v", i, err)
		}
	}

	events, err := s.ListOrderEvents(ctx, "order-1")
	if err != nil {
		t.Fatalf("ListOrderEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want exactly 1", len(events))
	}
}

func TestListOrderEvents_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)

	for _, ref := range []string{"evt_1", "evt_2", "evt_3"} {
		err := s.AppendOrderEvent(ctx, domain.OrderEvent{
			OrderID:     "order-1",
			EventType:   domain.AuditPaymentConfirmed,
			Source:      domain.SourceWebhook,
			ReferenceID: ref,
		})
		if err != nil {
			t.Fatalf("AppendOrderEvent(%s) failed: %v", ref, err)
		}
	}

	events, err := s.ListOrderEvents(ctx, "order-1")
	if err != nil {
		t.Fatalf("ListOrderEvents() failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"evt_1", "evt_2", "evt_3"} {
		if events[i].ReferenceID != want {
			t.Errorf("events[%d].ReferenceID = %q, want %q", i, events[i].ReferenceID, want)
		}
	}
}

func TestListOrderEvents_Empty(t *testing.T) {
	s := createTestStore(t)
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)

	events, err := s.ListOrderEvents(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("ListOrderEvents() failed: %v", err)
	}
	if events == nil {
		t.Error("expected empty slice, got nil")
	}
}
