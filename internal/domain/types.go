package domain

import "time"

// OrderStatus is the lifecycle state of an order.
//
// PAID is terminal: once an order reaches PAID, no further status
// transition is permitted. The store enforces this with a status-guarded
// UPDATE; callers must never write PENDING over PAID.
type OrderStatus string

const (
	// OrderPending is the initial status of every order.
	OrderPending OrderStatus = "PENDING"

	// OrderPaid is the terminal status. Monotonic - never reverted.
	OrderPaid OrderStatus = "PAID"
)

// EventStatus is the processing state of a ledger entry.
type EventStatus string

const (
	// EventStarted marks intent to process. Written the first time an
	// external event id is observed, before any side effects.
	EventStarted EventStatus = "STARTED"

	// EventCompleted means all side effects for the event have durably
	// landed. Never reverted.
	EventCompleted EventStatus = "COMPLETED"
)

// Product is a purchasable item. Price is in minor currency units
// (e.g. paise for INR), never a float.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Order references a product and carries the payment lifecycle state.
// PaymentIntentID is empty until a payment intent has been created for
// the order; it doubles as the idempotency key for intent creation.
type Order struct {
	ID              string      `json:"id"`
	ProductID       string      `json:"product_id"`
	Status          OrderStatus `json:"status"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderDetail is an order joined with its product, for listing.
type OrderDetail struct {
	Order
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
}

// ProcessedEvent is an Event Ledger entry. Exactly one entry exists per
// external event id (UNIQUE at the store level). The insert-or-fail
// semantics of that constraint are the concurrency primitive for
// exactly-once processing.
type ProcessedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderEvent is an Audit Trail entry: one state-changing action applied
// to an order, with provenance. Append-only - never mutated or deleted.
type OrderEvent struct {
	ID          int64             `json:"id"`
	OrderID     string            `json:"order_id"`
	EventType   string            `json:"event_type"`
	Source      string            `json:"source"`
	ReferenceID string            `json:"reference_id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Audit trail tags written by the reconciliation engine.
const (
	AuditPaymentConfirmed = "PAYMENT_CONFIRMED"
	SourceWebhook         = "WEBHOOK"
)
