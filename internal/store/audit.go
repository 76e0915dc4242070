package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/settleio/settle/internal/domain"
)

// AppendOrderEvent appends one audit record for an order.
//
// Uses ON CONFLICT(order_id, reference_id) DO NOTHING for idempotency:
// the same external event applied to the same order twice leaves exactly
// one record. The table is append-only; nothing ever updates or deletes
// from it.
func (s *Store) AppendOrderEvent(ctx context.Context, ev domain.OrderEvent) error {
	metaJSON, err := marshalMetadata(ev.Metadata)
	if err != nil {
		return fmt.Errorf("append order event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO order_events (order_id, event_type, source, reference_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id, reference_id) DO NOTHING
	`, ev.OrderID, ev.EventType, ev.Source, ev.ReferenceID, metaJSON, now())
	if err != nil {
		return fmt.Errorf("append order event: %w", err)
	}
	return nil
}

// ListOrderEvents returns the audit trail for an order, oldest first.
// Ordering is by rowid so results are deterministic across reads.
// Returns an empty slice (not nil) if no events exist.
func (s *Store) ListOrderEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, event_type, source, reference_id, metadata, created_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	defer rows.Close()

	events := []domain.OrderEvent{}
	for rows.Next() {
		var ev domain.OrderEvent
		var metaJSON, created string
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.EventType, &ev.Source,
			&ev.ReferenceID, &metaJSON, &created); err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		if ev.Metadata, err = unmarshalMetadata(metaJSON); err != nil {
			return nil, err
		}
		if ev.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order events: %w", err)
	}

	return events, nil
}

func marshalMetadata(meta map[string]string) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}

func unmarshalMetadata(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(s), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return meta, nil
}
