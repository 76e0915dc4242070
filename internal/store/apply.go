package store

import (
	"context"
	"fmt"

	"github.com/settleio/settle/internal/domain"
)

// ApplyPayment atomically applies a reconciled payment event to an order:
// one audit record, the PENDING->PAID transition, and the ledger
// finalization commit as a unit, or not at all.
//
// Every statement is individually idempotent (conflict-ignoring insert,
// status-guarded updates), so a retry after a crash mid-transaction - or
// a concurrent duplicate delivery racing past the ledger claim -
// converges on the same final state: one audit row, order PAID, ledger
// entry COMPLETED.
//
// This is the crash-safe variant of the non-atomic sequence:
// AppendOrderEvent -> UpdateOrderStatus -> CompleteEvent.
func (s *Store) ApplyPayment(ctx context.Context, orderID string, ev domain.PaymentEvent) error {
	metaJSON, err := marshalMetadata(ev.Metadata())
	if err != nil {
		return fmt.Errorf("apply payment: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply payment: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	ts := now()

	// Step 1: append the audit record. UNIQUE(order_id, reference_id)
	// makes a duplicate apply a no-op instead of a second row.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_events (order_id, event_type, source, reference_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id, reference_id) DO NOTHING
	`, orderID, domain.AuditPaymentConfirmed, domain.SourceWebhook, ev.ID, metaJSON, ts)
	if err != nil {
		return fmt.Errorf("apply payment: audit record: %w", err)
	}

	// Step 2: transition the order. The status guard keeps PAID terminal.
	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = 'PAID' WHERE id = ? AND status != 'PAID'
	`, orderID)
	if err != nil {
		return fmt.Errorf("apply payment: mark paid: %w", err)
	}

	// Step 3: finalize the ledger entry.
	_, err = tx.ExecContext(ctx, `
		UPDATE processed_events
		SET status = 'COMPLETED', updated_at = ?
		WHERE event_id = ? AND status != 'COMPLETED'
	`, ts, ev.ID)
	if err != nil {
		return fmt.Errorf("apply payment: finalize ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply payment: commit: %w", err)
	}

	return nil
}
