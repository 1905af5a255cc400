// Package sqlite implements the order repository against an embedded
// SQLite database file using the pure Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"ordersvc/pkg/order"
)

// Repository persists orders in a single SQLite file.
type Repository struct {
	db *sql.DB
}

// Open opens the database file, creating it if needed, and configures the
// connection pool for a single writer.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL allows readers to proceed while a write is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	// SQLite benefits from a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return &Repository{db: db}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error { return r.db.Close() }

// Init ensures the orders table exists. Safe to call on every start.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item TEXT,
		quantity INTEGER
	)`)
	if err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

// Create inserts item and quantity, returning the order with its
// store-assigned id.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO orders (item, quantity) VALUES (?, ?)", o.Item, o.Quantity)
	if err != nil {
		return order.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return order.Order{}, err
	}
	o.ID = id
	return o, nil
}

// Get retrieves an order by id.
func (r *Repository) Get(ctx context.Context, id int64) (order.Order, error) {
	var o order.Order
	err := r.db.QueryRowContext(ctx, "SELECT id, item, quantity FROM orders WHERE id = ?", id).
		Scan(&o.ID, &o.Item, &o.Quantity)
	if err == sql.ErrNoRows {
		return order.Order{}, order.ErrNotFound
	}
	return o, err
}

// List fetches all orders in storage order.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, item, quantity FROM orders")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.Item, &o.Quantity); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update writes item and quantity for the matching row, then re-reads and
// returns the stored state. No row matched means ErrNotFound.
func (r *Repository) Update(ctx context.Context, id int64, o order.Order) (order.Order, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET item = ?, quantity = ? WHERE id = ?", o.Item, o.Quantity, id)
	if err != nil {
		return order.Order{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return order.Order{}, err
	}
	if n == 0 {
		return order.Order{}, order.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes an order by id, reporting whether a row was actually
// removed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
