// Package eventbus publishes integration events produced by the ranking
// engine.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// PublishJSON encodes event and publishes it under routingKey.
func PublishJSON(ctx context.Context, p Publisher, routingKey string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", routingKey, err)
	}
	return p.Publish(ctx, routingKey, payload)
}
