package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/settleio/settle/internal/domain"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestProduct inserts a product and returns it.
func createTestProduct(t *testing.T, s *Store, name string, price int64) domain.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), domain.Product{
		ID:    "prod-" + name,
		Name:  name,
		Price: price,
	})
	if err != nil {
		t.Fatalf("CreateProduct() failed: %v", err)
	}
	return p
}

// createTestOrder inserts a PENDING order for the given product.
func createTestOrder(t *testing.T, s *Store, id, productID string) domain.Order {
	t.Helper()
	o, err := s.CreateOrder(context.Background(), domain.Order{
		ID:        id,
		ProductID: productID,
	})
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}
	return o
}

// testPaymentEvent builds a valid payment-succeeded event.
func testPaymentEvent(id, intentID string) domain.PaymentEvent {
	return domain.PaymentEvent{
		ID:              id,
		Type:            domain.PaymentEventSucceeded,
		PaymentIntentID: intentID,
		Amount:          5000,
		Currency:        "inr",
	}
}
