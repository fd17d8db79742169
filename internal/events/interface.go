package events

import (
	"context"
)

// EventBus distributes events to subscribers. Publishing is
// non-blocking from the caller's point of view; delivery happens on the
// bus's own goroutine.
type EventBus interface {
	// Start begins event processing
	Start(ctx context.Context) error

	// Stop shuts the bus down, waiting for in-flight deliveries
	Stop(ctx context.Context) error

	// Publish enqueues an event for delivery. It never blocks; when the
	// buffer is full the event is dropped with a warning.
	Publish(event Event) error

	// Subscribe registers a handler for events matching the filter and
	// returns the subscription id.
	Subscribe(subscriber string, filter EventFilter, handler EventHandler) (string, error)

	// Unsubscribe removes a subscription by id
	Unsubscribe(id string) error
}
