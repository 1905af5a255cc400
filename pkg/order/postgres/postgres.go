// Package postgres implements the order repository against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"

	"ordersvc/pkg/order"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository around an open database handle.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init ensures the orders table exists. Safe to call on every start.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		item TEXT,
		quantity INTEGER
	)`)
	return err
}

// Create inserts a new order and returns it with the assigned id.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO orders (item, quantity) VALUES ($1, $2) RETURNING id",
		o.Item, o.Quantity).Scan(&o.ID)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

// Get retrieves an order by id.
func (r *Repository) Get(ctx context.Context, id int64) (order.Order, error) {
	var o order.Order
	err := r.db.QueryRowContext(ctx, "SELECT id, item, quantity FROM orders WHERE id=$1", id).
		Scan(&o.ID, &o.Item, &o.Quantity)
	if err == sql.ErrNoRows {
		return order.Order{}, order.ErrNotFound
	}
	return o, err
}

// List fetches all orders.
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

// Update writes item and quantity for the matching row and returns the
// stored state re-read from the database.
func (r *Repository) Update(ctx context.Context, id int64, o order.Order) (order.Order, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET item=$2, quantity=$3 WHERE id=$1", id, o.Item, o.Quantity)
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

// Delete removes an order by id, reporting whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id=$1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
