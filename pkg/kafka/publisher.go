// Package kafka implements the order event publisher against a Kafka
// broker, including the bounded-retry connection startup.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"ordersvc/pkg/order"
)

// ErrNotStarted is returned when Publish or Close is called outside the
// Ready state. Callers must pair a successful Start with Close.
var ErrNotStarted = errors.New("kafka publisher not started")

type state int

const (
	stateUninitialized state = iota
	stateReady
	stateStopped
	stateFailed
)

// messageWriter abstracts kafkago.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// dialFunc probes broker reachability during startup.
type dialFunc func(ctx context.Context, network, address string) (io.Closer, error)

// Publisher sends order-created events over one long-lived writer shared
// by all publish calls. Concurrent publishes are serialized by the client
// itself; the publisher adds no queueing of its own.
type Publisher struct {
	addr  string
	topic string

	dial      dialFunc
	newWriter func() messageWriter

	mu     sync.Mutex
	st     state
	writer messageWriter
}

// NewPublisher configures a publisher for the given bootstrap address and
// topic. Start must succeed before Publish is used.
func NewPublisher(addr, topic string) *Publisher {
	p := &Publisher{addr: addr, topic: topic}
	p.dial = func(ctx context.Context, network, address string) (io.Closer, error) {
		return kafkago.DefaultDialer.DialContext(ctx, network, address)
	}
	p.newWriter = func() messageWriter {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(addr),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			Async:        false,
		}
	}
	return p
}

// Start establishes the broker connection, retrying with a fixed delay
// between failed attempts, attempts total including the first. The wait
// suspends on the context rather than blocking, and exhausting every
// attempt is fatal: the publisher ends up Failed and unusable.
func (p *Publisher) Start(ctx context.Context, attempts int, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.st != stateUninitialized {
		return fmt.Errorf("kafka publisher already started")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := p.dial(ctx, "tcp", p.addr)
		if err == nil {
			_ = conn.Close()
			p.writer = p.newWriter()
			p.st = stateReady
			return nil
		}
		lastErr = err
		if attempt < attempts {
			select {
			case <-ctx.Done():
				p.st = stateFailed
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	p.st = stateFailed
	return fmt.Errorf("could not connect to kafka at %s after %d attempts: %w", p.addr, attempts, lastErr)
}

// Publish serializes the order to its flat JSON record and sends it to
// the configured topic, waiting for broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, o order.Order) error {
	p.mu.Lock()
	if p.st != stateReady {
		p.mu.Unlock()
		return ErrNotStarted
	}
	w := p.writer
	p.mu.Unlock()

	value, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %d: %w", o.ID, err)
	}
	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(o.ID, 10)),
		Value: value,
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %d: %w", o.ID, err)
	}
	return nil
}

// Close releases the writer. Closing a publisher that never reached Ready
// is an error, not a panic.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.st != stateReady {
		return ErrNotStarted
	}
	p.st = stateStopped
	return p.writer.Close()
}
