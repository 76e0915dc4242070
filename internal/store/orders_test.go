package store

import (
	"context"
	"errors"
	"testing"

	"github.com/settleio/settle/internal/domain"
)

func TestCreateOrder_DefaultsToPending(t *testing.T) {
	s := createTestStore(t)
	p := createTestProduct(t, s, "widget", 5000)

	o := createTestOrder(t, s, "order-1", p.ID)

	if o.Status != domain.OrderPending {
		t.Errorf("status = %q, want %q", o.Status, domain.OrderPending)
	}

	got, err := s.GetOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if got.ProductID != p.ID {
		t.Errorf("product id = %q, want %q", got.ProductID, p.ID)
	}
	if got.PaymentIntentID != "" {
		t.Errorf("payment intent id = %q, want empty", got.PaymentIntentID)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	s := createTestStore(t)

	_, err := s.CreateOrder(context.Background(), domain.Order{
		ID:        "order-1",
		ProductID: "no-such-product",
	})
	if err == nil {
		t.Error("expected foreign key error, got nil")
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetOrder(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetPaymentRef(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)

	if err := s.SetPaymentRef(ctx, "order-1", "pi_1"); err != nil {
		t.Fatalf("SetPaymentRef() failed: %v", err)
	}

	got, err := s.GetOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if got.PaymentIntentID != "pi_1" {
		t.Errorf("payment intent id = %q, want %q", got.PaymentIntentID, "pi_1")
	}
}

func TestSetPaymentRef_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.SetPaymentRef(context.Background(), "missing", "pi_1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindOrderByPaymentRef(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)
	if err := s.SetPaymentRef(ctx, "order-1", "pi_1"); err != nil {
		t.Fatalf("SetPaymentRef() failed: %v", err)
	}

	got, err := s.FindOrderByPaymentRef(ctx, "pi_1")
	if err != nil {
		t.Fatalf("FindOrderByPaymentRef() failed: %v", err)
	}
	if got.ID != "order-1" {
		t.Errorf("order id = %q, want %q", got.ID, "order-1")
	}

	_, err = s.FindOrderByPaymentRef(ctx, "pi_unknown")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown ref, got %v", err)
	}
}

func TestUpdateOrderStatus_MonotonicPaid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)

	changed, err := s.UpdateOrderStatus(ctx, "order-1", domain.OrderPaid)
	if err != nil {
		t.Fatalf("UpdateOrderStatus() failed: %v", err)
	}
	if !changed {
		t.Error("expected PENDING->PAID transition to change a row")
	}

	// A PAID order never transitions again, not even back to PENDING.
	changed, err = s.UpdateOrderStatus(ctx, "order-1", domain.OrderPending)
	if err != nil {
		t.Fatalf("UpdateOrderStatus() failed: %v", err)
	}
	if changed {
		t.Error("PAID order must not be writable")
	}

	got, err := s.GetOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if got.Status != domain.OrderPaid {
		t.Errorf("status = %q, want %q", got.Status, domain.OrderPaid)
	}
}

func TestListOrders_JoinsProduct(t *testing.T) {
	s := createTestStore(t)
	p := createTestProduct(t, s, "widget", 5000)
	createTestOrder(t, s, "order-1", p.ID)
	createTestOrder(t, s, "order-2", p.ID)

	orders, err := s.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders() failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].ProductName != "widget" || orders[0].ProductPrice != 5000 {
		t.Errorf("joined product = %q/%d, want widget/5000",
			orders[0].ProductName, orders[0].ProductPrice)
	}
}

func TestListOrders_Empty(t *testing.T) {
	s := createTestStore(t)

	orders, err := s.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders() failed: %v", err)
	}
	if orders == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(orders) != 0 {
		t.Errorf("got %d orders, want 0", len(orders))
	}
}
