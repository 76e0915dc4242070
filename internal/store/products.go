package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/settleio/settle/internal/domain"
)

// Timestamps are stored as RFC 3339 text in UTC and written from Go so
// that reads parse with a single known layout.
const timeLayout = time.RFC3339Nano

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// CreateProduct inserts a product. The caller supplies the ID
// (domain.NewID); CreatedAt is set by the store.
func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	created := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, created_at)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, p.Price, created)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	p.CreatedAt, err = parseTime(created)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// GetProduct retrieves a product by ID.
// Returns domain.ErrNotFound if no product exists.
func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, created_at
		FROM products
		WHERE id = ?
	`, id)

	var p domain.Product
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	var err error
	p.CreatedAt, err = parseTime(created)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// ListProducts returns all products, oldest first.
// Returns an empty slice (not nil) if no products exist.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, created_at
		FROM products
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &created); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
