package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// Message is an event delivered by the in-process bus.
type Message struct {
	RoutingKey string
	Payload    []byte
}

// Handler receives messages for one routing key.
type Handler func(ctx context.Context, msg Message) error

// DefaultHistorySize is how many published messages the bus keeps.
const DefaultHistorySize = 256

// InProcessEventBus delivers events synchronously to in-process handlers.
// It keeps the most recent messages so callers can inspect what was
// published.
type InProcessEventBus struct {
	mu          sync.Mutex
	handlers    map[string][]Handler
	published   []Message
	historySize int
	logger      *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		handlers:    make(map[string][]Handler),
		historySize: DefaultHistorySize,
		logger:      logger,
	}
}

// Subscribe registers h for routingKey. "#" receives every message.
func (b *InProcessEventBus) Subscribe(routingKey string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], h)
}

// Publish records the message and dispatches it. Handler errors are logged
// and never fail the publish.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	msg := Message{RoutingKey: routingKey, Payload: append([]byte(nil), payload...)}

	b.mu.Lock()
	b.published = append(b.published, msg)
	if over := len(b.published) - b.historySize; over > 0 {
		b.published = append([]Message(nil), b.published[over:]...)
	}
	handlers := append(append([]Handler(nil), b.handlers[routingKey]...), b.handlers["#"]...)
	b.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, msg); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}
	return nil
}

// Published returns a copy of the retained messages, oldest first.
func (b *InProcessEventBus) Published() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.published...)
}

// Close is a no-op.
func (b *InProcessEventBus) Close() error {
	return nil
}
