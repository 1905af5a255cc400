package order

import (
	"context"
	"fmt"
	"time"

	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"
)

// PublishFailurePolicy controls what Create does when the order row was
// persisted but the created event could not be sent.
type PublishFailurePolicy string

const (
	// PublishFailureIgnore logs and counts the failure; Create still
	// returns the persisted order without an error.
	PublishFailureIgnore PublishFailurePolicy = "ignore"

	// PublishFailureFail surfaces the publish error to the caller. The
	// row stays persisted either way.
	PublishFailureFail PublishFailurePolicy = "fail"
)

// ParsePublishFailurePolicy validates a policy name from configuration.
func ParsePublishFailurePolicy(s string) (PublishFailurePolicy, error) {
	switch PublishFailurePolicy(s) {
	case PublishFailureIgnore, PublishFailureFail:
		return PublishFailurePolicy(s), nil
	}
	return "", fmt.Errorf("unknown publish failure policy %q", s)
}

// PublishError reports that an order was persisted but its created event
// could not be sent.
type PublishError struct {
	Order Order
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("order %d persisted but event publish failed: %v", e.Order.ID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Service sequences persistence and event emission for the order
// lifecycle. It owns the consistency contract between the two: a row is
// always inserted first, then one best-effort event attempt is made.
type Service struct {
	repo    Repository
	pub     Publisher
	log     *logger.Logger
	metrics *metrics.Registry
	policy  PublishFailurePolicy
}

// NewService wires the coordination service to its ports.
func NewService(repo Repository, pub Publisher, log *logger.Logger, m *metrics.Registry, policy PublishFailurePolicy) *Service {
	return &Service{repo: repo, pub: pub, log: log, metrics: m, policy: policy}
}

// Create persists the order and publishes a created event for it. Any id
// on the input is ignored; the store assigns one. A publish failure after
// a successful insert is handled per the configured policy: the row
// exists regardless of the event outcome.
func (s *Service) Create(ctx context.Context, o Order) (Order, error) {
	o.ID = 0
	saved, err := s.repo.Create(ctx, o)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	s.metrics.OrdersCreated.Inc()

	start := time.Now()
	if err := s.pub.Publish(ctx, saved); err != nil {
		s.metrics.PublishFailures.Inc()
		if s.policy == PublishFailureFail {
			return saved, &PublishError{Order: saved, Err: err}
		}
		s.log.Warn(ctx, "order created event not published", "id", saved.ID, "error", err)
		return saved, nil
	}
	s.metrics.PublishLatency.Observe(time.Since(start).Seconds())
	s.metrics.OrdersPublished.Inc()
	return saved, nil
}

// List returns all persisted orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Get returns the order with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces item and quantity for an existing order and returns the
// stored state, or ErrNotFound when no row matched. No event is emitted.
func (s *Service) Update(ctx context.Context, id int64, o Order) (Order, error) {
	return s.repo.Update(ctx, id, o)
}

// Delete removes the order and reports whether a row was actually
// removed. Absence is not an error. No event is emitted.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}
