package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/settleio/settle/internal/domain"
)

// Store is the persistence surface the reconciler needs. Implemented by
// *store.Store; narrowed to an interface here so tests and alternative
// backends can substitute their own.
type Store interface {
	// ClaimEvent records intent to process an event. Must be backed by a
	// uniqueness constraint on the event id: claimed=true for exactly one
	// caller per id, otherwise the existing entry's status is returned.
	ClaimEvent(ctx context.Context, eventID, eventType string) (claimed bool, status domain.EventStatus, err error)

	// FindOrderByPaymentRef resolves the order holding the given
	// payment-intent reference, or domain.ErrNotFound.
	FindOrderByPaymentRef(ctx context.Context, ref string) (domain.Order, error)

	// ApplyPayment atomically appends the audit record, transitions the
	// order to PAID, and finalizes the ledger entry. Each effect must be
	// individually idempotent.
	ApplyPayment(ctx context.Context, orderID string, ev domain.PaymentEvent) error
}

// Outcome classifies what a Reconcile call did. Every outcome except a
// returned error is a success from the caller's perspective: the event
// may be acknowledged to the source.
type Outcome string

const (
	// OutcomeApplied - the order was transitioned to PAID and an audit
	// record written.
	OutcomeApplied Outcome = "applied"

	// OutcomeDuplicate - the ledger already held a COMPLETED entry for
	// this event id. Nothing was touched.
	OutcomeDuplicate Outcome = "duplicate"

	// OutcomeUnmatched - no order holds the event's payment-intent
	// reference. Nothing was touched beyond the ledger claim; a later
	// redelivery may still match once the order exists.
	OutcomeUnmatched Outcome = "unmatched"

	// OutcomeAlreadyPaid - the resolved order was already PAID. The
	// terminal-state backstop fired; nothing was touched.
	OutcomeAlreadyPaid Outcome = "already_paid"

	// OutcomeIgnored - the event type does not drive reconciliation.
	OutcomeIgnored Outcome = "ignored"
)

// Reconciler applies payment events to order state with exactly-once
// effect despite at-least-once delivery.
//
// Two independent idempotency guards are in play:
//
//  1. The event ledger: the uniqueness constraint on the external event
//     id suppresses redelivered events that already completed.
//  2. The order's terminal state: a PAID order is never written again,
//     even by an event id the ledger has never seen.
//
// Each guard covers a failure mode the other does not (redelivery vs.
// ledger loss), so both stay explicit.
//
// Thread-safety: Reconcile holds no state of its own; all coordination
// happens through the store's constraints. Safe to call concurrently
// from any number of goroutines, including with the same event.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

// New creates a Reconciler. A nil logger defaults to slog.Default().
func New(s Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: s, logger: logger}
}

// Reconcile applies one authenticated payment event.
//
// Safe to invoke concurrently and repeatedly with the same event, and
// for events referencing unknown or already-settled orders. A non-nil
// error means persistence failed mid-processing: the caller must NOT
// acknowledge the event, so the source redelivers it later. Redelivery
// is always safe per the idempotency guards.
func (r *Reconciler) Reconcile(ctx context.Context, ev domain.PaymentEvent) (Outcome, error) {
	if ev.Type != domain.PaymentEventSucceeded {
		r.logger.Debug("ignoring event type", "event_id", ev.ID, "type", ev.Type)
		return OutcomeIgnored, nil
	}

	// Step 1: dedup check / claim. The claim marks intent to process
	// before any side effects, so a crash after this point leaves a
	// STARTED entry that a redelivery resumes.
	claimed, status, err := r.store.ClaimEvent(ctx, ev.ID, ev.Type)
	if err != nil {
		return "", fmt.Errorf("reconcile %s: %w", ev.ID, err)
	}
	if !claimed && status == domain.EventCompleted {
		r.logger.Info("event already processed", "event_id", ev.ID)
		return OutcomeDuplicate, nil
	}
	// !claimed with status STARTED is the resume path: an earlier
	// attempt crashed before finalizing, or a concurrent duplicate is in
	// flight. Proceeding is safe either way - ApplyPayment is idempotent
	// per effect.

	// Step 2: resolve the target order.
	order, err := r.store.FindOrderByPaymentRef(ctx, ev.PaymentIntentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("no order for payment ref",
				"event_id", ev.ID, "payment_intent_id", ev.PaymentIntentID)
			return OutcomeUnmatched, nil
		}
		return "", fmt.Errorf("reconcile %s: %w", ev.ID, err)
	}

	// Step 3: terminal-state backstop. Catches duplicate deliveries even
	// when the ledger entry was lost or a different event id references
	// an already-settled order.
	if order.Status == domain.OrderPaid {
		r.logger.Info("order already paid", "event_id", ev.ID, "order_id", order.ID)
		return OutcomeAlreadyPaid, nil
	}

	// Steps 4-5: audit record, PENDING->PAID, ledger COMPLETED - one
	// transaction.
	if err := r.store.ApplyPayment(ctx, order.ID, ev); err != nil {
		return "", fmt.Errorf("reconcile %s: %w", ev.ID, err)
	}

	r.logger.Info("order marked paid",
		"event_id", ev.ID, "order_id", order.ID,
		"amount", ev.Amount, "currency", ev.Currency)
	return OutcomeApplied, nil
}
