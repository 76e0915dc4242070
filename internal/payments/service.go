// Package payments orchestrates the payment-intent lifecycle around an
// order: create-or-reuse an intent, and confirm it.
package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/settleio/settle/internal/domain"
	"github.com/settleio/settle/internal/gateway"
)

// OrderStore is the persistence surface the payments service needs.
// Implemented by *store.Store.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	SetPaymentRef(ctx context.Context, orderID, ref string) error
}

// DefaultPaymentMethod is used when a confirm request names none. It is
// Stripe's standard test card method.
const DefaultPaymentMethod = "pm_card_visa"

// Service runs the payment-intent lifecycle. It is deliberately not
// ledger-backed: the payment-intent reference stored on the order is its
// own idempotency key, re-read before anything is created.
type Service struct {
	store    OrderStore
	gateway  gateway.Gateway
	currency string
	logger   *slog.Logger
}

// New creates a Service. currencyCode is the ISO 4217 code intents are
// created in. A nil logger defaults to slog.Default().
func New(store OrderStore, gw gateway.Gateway, currencyCode string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gateway: gw, currency: currencyCode, logger: logger}
}

// StartPayment returns the client secret for an order's payment intent,
// creating the intent if the order has none yet.
//
// Retry-safe: a client that never saw the earlier response can call
// again, and the stored reference short-circuits to a retrieve - no
// second intent is ever created for the same order. Returns
// domain.ErrNotFound (wrapped) for an unknown order.
func (s *Service) StartPayment(ctx context.Context, orderID string) (clientSecret string, err error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("start payment: %w", err)
	}

	// Reuse path: intent already exists, just fetch its secret.
	if order.PaymentIntentID != "" {
		intent, err := s.gateway.RetrieveIntent(ctx, order.PaymentIntentID)
		if err != nil {
			return "", fmt.Errorf("start payment: %w", err)
		}
		s.logger.Debug("reusing payment intent",
			"order_id", orderID, "payment_intent_id", intent.ID)
		return intent.ClientSecret, nil
	}

	product, err := s.store.GetProduct(ctx, order.ProductID)
	if err != nil {
		return "", fmt.Errorf("start payment: %w", err)
	}

	intent, err := s.gateway.CreateIntent(ctx, product.Price, s.currency)
	if err != nil {
		return "", fmt.Errorf("start payment: %w", err)
	}

	if err := s.store.SetPaymentRef(ctx, order.ID, intent.ID); err != nil {
		return "", fmt.Errorf("start payment: %w", err)
	}

	s.logger.Info("payment intent created",
		"order_id", orderID, "payment_intent_id", intent.ID,
		"amount", product.Price, "currency", s.currency)
	return intent.ClientSecret, nil
}

// Confirm confirms a payment intent with the given payment method
// (DefaultPaymentMethod if empty) and returns the gateway's view of it.
func (s *Service) Confirm(ctx context.Context, intentID, paymentMethod string) (gateway.Intent, error) {
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	intent, err := s.gateway.ConfirmIntent(ctx, intentID, paymentMethod)
	if err != nil {
		return gateway.Intent{}, fmt.Errorf("confirm payment: %w", err)
	}

	s.logger.Info("payment intent confirmed",
		"payment_intent_id", intent.ID, "status", intent.Status)
	return intent, nil
}
