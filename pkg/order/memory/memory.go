// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"ordersvc/pkg/order"
)

// Repository provides an in-memory implementation of order.Repository.
// Ids are assigned from a local counter, mirroring the store's
// auto-increment column.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]order.Order
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[int64]order.Order)}
}

// Init is a no-op; there is no schema to create.
func (r *Repository) Init(ctx context.Context) error { return nil }

// Create stores the order under a freshly assigned id.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return o, nil
}

// Get retrieves an order by id.
func (r *Repository) Get(ctx context.Context, id int64) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

// List returns all orders in id order.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces item and quantity for an existing order.
func (r *Repository) Update(ctx context.Context, id int64, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return order.Order{}, order.ErrNotFound
	}
	o.ID = id
	r.orders[id] = o
	return o, nil
}

// Delete removes an order by id, reporting whether it existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return false, nil
	}
	delete(r.orders, id)
	return true, nil
}
