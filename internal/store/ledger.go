package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/settleio/settle/internal/domain"
)

// ClaimEvent records intent to process an external event.
//
// Uses INSERT ... ON CONFLICT(event_id) DO NOTHING so the PRIMARY KEY on
// event_id - not a read-then-write - decides the winner: exactly one
// caller ever claims a given event id, no matter how many concurrent
// deliveries race. Returns claimed=true if this call created the entry
// (status STARTED). If the entry already existed, returns claimed=false
// and the existing status, fetched in the same transaction.
func (s *Store) ClaimEvent(ctx context.Context, eventID, eventType string) (claimed bool, status domain.EventStatus, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, "", fmt.Errorf("claim event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	ts := now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO processed_events (event_id, event_type, status, created_at, updated_at)
		VALUES (?, ?, 'STARTED', ?, ?)
		ON CONFLICT(event_id) DO NOTHING
	`, eventID, eventType, ts, ts)
	if err != nil {
		return false, "", fmt.Errorf("claim event: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, "", fmt.Errorf("claim event: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		if err := tx.Commit(); err != nil {
			return false, "", fmt.Errorf("claim event: commit: %w", err)
		}
		return true, domain.EventStarted, nil
	}

	// Conflict - entry already exists, fetch its status.
	var existing string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM processed_events WHERE event_id = ?
	`, eventID).Scan(&existing)
	if err != nil {
		return false, "", fmt.Errorf("claim event: select existing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, "", fmt.Errorf("claim event: commit (existing): %w", err)
	}

	return false, domain.EventStatus(existing), nil
}

// CompleteEvent marks a ledger entry COMPLETED. Idempotent: completing an
// already-completed entry is a no-op. COMPLETED is never reverted.
func (s *Store) CompleteEvent(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE processed_events
		SET status = 'COMPLETED', updated_at = ?
		WHERE event_id = ? AND status != 'COMPLETED'
	`, now(), eventID)
	if err != nil {
		return fmt.Errorf("complete event: %w", err)
	}
	return nil
}

// GetProcessedEvent retrieves a ledger entry by external event id.
// Returns domain.ErrNotFound if the event has never been observed.
func (s *Store) GetProcessedEvent(ctx context.Context, eventID string) (domain.ProcessedEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT event_id, event_type, status, created_at, updated_at
		FROM processed_events
		WHERE event_id = ?
	`, eventID)

	var pe domain.ProcessedEvent
	var status, created, updated string
	if err := row.Scan(&pe.EventID, &pe.EventType, &status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProcessedEvent{}, fmt.Errorf("processed event %s: %w", eventID, domain.ErrNotFound)
		}
		return domain.ProcessedEvent{}, fmt.Errorf("get processed event: %w", err)
	}
	pe.Status = domain.EventStatus(status)

	var err error
	if pe.CreatedAt, err = parseTime(created); err != nil {
		return domain.ProcessedEvent{}, err
	}
	if pe.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.ProcessedEvent{}, err
	}
	return pe, nil
}
