package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedBus(t *testing.T) EventBus {
	t.Helper()
	bus := NewEventBus(DefaultEventBusConfig())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		bus.Stop(ctx)
	})
	return bus
}

// collector gathers delivered events behind a mutex so tests can poll.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handler(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) first() Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[0]
}

func TestEventBus_PublishDelivers(t *testing.T) {
	bus := startedBus(t)

	var got collector
	_, err := bus.Subscribe("test", EventFilter{}, got.handler)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(Event{
		Type:    EventResolutionCompleted,
		Source:  "system.resolver",
		Message: "Attack on Titan",
	}))

	require.Eventually(t, func() bool { return got.count() == 1 }, time.Second, 5*time.Millisecond)

	event := got.first()
	assert.Equal(t, EventResolutionCompleted, event.Type)
	assert.NotEmpty(t, event.ID, "missing id is filled in")
	assert.False(t, event.Timestamp.IsZero(), "missing timestamp is filled in")
}

func TestEventBus_FilterByType(t *testing.T) {
	bus := startedBus(t)

	var resolutions collector
	_, err := bus.Subscribe("test", EventFilter{
		Types: []EventType{EventResolutionCompleted},
	}, resolutions.handler)
	require.NoError(t, err)

	var everything collector
	_, err = bus.Subscribe("test-all", EventFilter{}, everything.handler)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(Event{Type: EventResolutionCompleted, Source: "system.resolver"}))
	require.NoError(t, bus.Publish(Event{Type: EventLibraryEntryAdded, Source: "system.library"}))

	require.Eventually(t, func() bool { return everything.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, resolutions.count())
}

func TestEventBus_FilterBySource(t *testing.T) {
	f := EventFilter{Sources: []string{"system.library"}}

	assert.True(t, f.Matches(Event{Type: EventLibraryEntryAdded, Source: "system.library"}))
	assert.False(t, f.Matches(Event{Type: EventLibraryEntryAdded, Source: "system.resolver"}))
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)

	var got collector
	id, err := bus.Subscribe("test", EventFilter{}, got.handler)
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(id))
	assert.Error(t, bus.Unsubscribe(id), "double unsubscribe")

	require.NoError(t, bus.Publish(Event{Type: EventInfo, Source: "system"}))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, got.count())
}

func TestEventBus_PublishRequiresRunning(t *testing.T) {
	bus := NewEventBus(DefaultEventBusConfig())

	err := bus.Publish(Event{Type: EventInfo, Source: "system"})
	assert.Error(t, err)
}

func TestEventBus_PublishRejectsMissingType(t *testing.T) {
	bus := startedBus(t)

	err := bus.Publish(Event{Source: "system"})
	assert.Error(t, err)
}

func TestEventBus_StartTwice(t *testing.T) {
	bus := startedBus(t)
	assert.Error(t, bus.Start(context.Background()))
}
