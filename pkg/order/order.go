package order

import (
	"context"
	"errors"
)

// Order represents a customer purchase order. ID is zero until the
// repository assigns one on create and is immutable afterwards.
type Order struct {
	ID       int64  `json:"id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Repository defines behavior for persisting orders.
type Repository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, id int64, o Order) (Order, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Publisher emits an event for every created order.
type Publisher interface {
	Publish(ctx context.Context, o Order) error
}

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")
