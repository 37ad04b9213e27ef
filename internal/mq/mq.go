package mq

import "context"

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker operations the notification pipeline uses.
type Backend interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, queue string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends a message to the named queue.
func (m *MQ) Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, queue, data, attrs)
}

// Subscribe consumes messages from the named queue.
func (m *MQ) Subscribe(ctx context.Context, queue string, handler Handler) error {
	return m.backend.Subscribe(ctx, queue, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
