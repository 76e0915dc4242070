package domain

import (
	"errors"
	"fmt"

	"golang.org/x/text/currency"
)

// PaymentEventSucceeded is the only inbound event type that triggers
// reconciliation. All other types are acknowledged without effect.
const PaymentEventSucceeded = "payment_intent.succeeded"

// ErrNotFound is returned by stores when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// PaymentEvent is an authenticated inbound event, normalized at the
// intake boundary. The reconciliation engine only ever sees this shape;
// processor-specific envelopes (signatures, raw payloads) never reach it.
type PaymentEvent struct {
	// ID is the external event identifier (e.g. "evt_..."). It is the
	// dedup key for the event ledger.
	ID string `json:"id"`

	// Type is the event type tag (e.g. "payment_intent.succeeded").
	Type string `json:"type"`

	// PaymentIntentID links the event to a local order.
	PaymentIntentID string `json:"payment_intent_id"`

	// Amount in minor currency units.
	Amount int64 `json:"amount"`

	// Currency is a three-letter ISO 4217 code.
	Currency string `json:"currency"`
}

// Validate checks that required fields are present and the currency is a
// well-formed ISO 4217 code. Called at the intake boundary before the
// event reaches the reconciliation engine.
func (e PaymentEvent) Validate() error {
	if e.ID == "" {
		return errors.New("payment event: missing event id")
	}
	if e.Type == "" {
		return errors.New("payment event: missing event type")
	}
	if e.PaymentIntentID == "" {
		return errors.New("payment event: missing payment intent reference")
	}
	if e.Amount < 0 {
		return fmt.Errorf("payment event %s: negative amount %d", e.ID, e.Amount)
	}
	if _, err := currency.ParseISO(e.Currency); err != nil {
		return fmt.Errorf("payment event %s: invalid currency %q: %w", e.ID, e.Currency, err)
	}
	return nil
}

// Metadata returns the audit-trail metadata for the event: the payment
// intent reference plus amount and currency, as flat strings.
func (e PaymentEvent) Metadata() map[string]string {
	return map[string]string{
		"payment_intent_id": e.PaymentIntentID,
		"amount":            fmt.Sprintf("%d", e.Amount),
		"currency":          e.Currency,
	}
}
