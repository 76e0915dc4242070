package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/settleio/settle/internal/domain"
)

// CreateOrder inserts a new order with status PENDING.
// The referenced product must exist (foreign key constraint).
func (s *Store) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	created := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, product_id, status, payment_intent_id, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?)
	`, o.ID, o.ProductID, string(o.Status), o.PaymentIntentID, created)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	if o.CreatedAt, err = parseTime(created); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// GetOrder retrieves an order by ID.
// Returns domain.ErrNotFound if no order exists.
func (s *Store) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, status, payment_intent_id, created_at
		FROM orders
		WHERE id = ?
	`, id)
	return scanOrder(row, id)
}

// FindOrderByPaymentRef resolves the order whose stored payment-intent
// reference equals ref. Returns domain.ErrNotFound if nothing matches -
// a legitimate outcome for test events or races with order creation.
func (s *Store) FindOrderByPaymentRef(ctx context.Context, ref string) (domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, status, payment_intent_id, created_at
		FROM orders
		WHERE payment_intent_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, ref)
	return scanOrder(row, ref)
}

// SetPaymentRef stores the external payment-intent reference on an order.
// Returns domain.ErrNotFound if the order does not exist.
func (s *Store) SetPaymentRef(ctx context.Context, orderID, ref string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET payment_intent_id = ? WHERE id = ?
	`, ref, orderID)
	if err != nil {
		return fmt.Errorf("set payment ref: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set payment ref: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return nil
}

// UpdateOrderStatus transitions an order to the given status, honoring
// the terminal-state invariant: a PAID order is never written again.
// Returns (true, nil) if a row changed, (false, nil) if the order was
// missing or already terminal.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ? WHERE id = ? AND status != 'PAID'
	`, string(status), orderID)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status: rows affected: %w", err)
	}
	return n > 0, nil
}

// ListOrders returns all orders joined with their product, oldest first.
// Returns an empty slice (not nil) if no orders exist.
func (s *Store) ListOrders(ctx context.Context) ([]domain.OrderDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.product_id, o.status, o.payment_intent_id, o.created_at,
		       p.name, p.price
		FROM orders o
		JOIN products p ON o.product_id = p.id
		ORDER BY o.created_at ASC, o.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.OrderDetail{}
	for rows.Next() {
		var d domain.OrderDetail
		var status, created string
		var ref sql.NullString
		if err := rows.Scan(&d.ID, &d.ProductID, &status, &ref, &created,
			&d.ProductName, &d.ProductPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		d.Status = domain.OrderStatus(status)
		d.PaymentIntentID = ref.String
		if d.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		orders = append(orders, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// scanOrder scans a single order row, mapping sql.ErrNoRows to
// domain.ErrNotFound with the lookup key in the message.
func scanOrder(row *sql.Row, key string) (domain.Order, error) {
	var o domain.Order
	var status, created string
	var ref sql.NullString
	if err := row.Scan(&o.ID, &o.ProductID, &status, &ref, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("order %s: %w", key, domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentIntentID = ref.String

	var err error
	if o.CreatedAt, err = parseTime(created); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
