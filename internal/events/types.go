// Package events provides the in-process event bus used for
// notifications between modules and for streaming activity to clients.
package events

import (
	"time"
)

// EventType represents the type of event
type EventType string

// System-wide event types
const (
	// Resolution events
	EventResolutionCompleted EventType = "resolution.completed"
	EventResolutionFailed    EventType = "resolution.failed"
	EventMappingSaved        EventType = "mapping.saved"
	EventMappingVerified     EventType = "mapping.verified"

	// Library events
	EventLibraryEntryAdded     EventType = "library.entry.added"
	EventLibraryConflictFound  EventType = "library.conflict.detected"
	EventLibraryConflictClosed EventType = "library.conflict.resolved"

	// System events
	EventSystemStarted EventType = "system.started"
	EventSystemStopped EventType = "system.stopped"

	// General events
	EventError   EventType = "error"
	EventWarning EventType = "warning"
	EventInfo    EventType = "info"
)

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"` // module id, user:id, system
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler represents a function that handles events
type EventHandler func(event Event) error

// EventFilter represents filters for event subscriptions
type EventFilter struct {
	Types   []EventType `json:"types,omitempty"`
	Sources []string    `json:"sources,omitempty"`
}

// Matches reports whether an event passes the filter.
func (f EventFilter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Sources) > 0 {
		found := false
		for _, s := range f.Sources {
			if s == event.Source {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Subscription represents an event subscription
type Subscription struct {
	ID         string       `json:"id"`
	Filter     EventFilter  `json:"filter"`
	Handler    EventHandler `json:"-"`
	Subscriber string       `json:"subscriber"`
	Created    time.Time    `json:"created"`
}

// EventBusConfig holds event bus tuning parameters
type EventBusConfig struct {
	BufferSize int `json:"buffer_size"`
}

// DefaultEventBusConfig returns sensible defaults for the event bus.
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{BufferSize: 256}
}
