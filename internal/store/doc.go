// Package store provides SQLite-backed durable storage for orders, the
// payment event ledger, and the order audit trail.
//
// # Critical Patterns
//
// Event-level idempotency
//   - PRIMARY KEY on processed_events.event_id
//   - ClaimEvent uses insert-or-fail, never read-then-write, so exactly
//     one caller claims a given external event id
//
// Audit-record idempotency
//   - UNIQUE(order_id, reference_id) on order_events
//   - The same event applied twice to an order leaves exactly one record
//
// Terminal order state
//   - Every status write is guarded with AND status != 'PAID'
//   - An order never leaves PAID
//
// Atomic apply
//   - ApplyPayment commits audit record, status transition, and ledger
//     finalization in one transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - Single connection: SQLite allows one writer at a time
package store
