package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(BuildFinishedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Use type switch to call the generic Publish with the correct type
	switch e := ev.(type) {
	case BuildStartedEvent:
		event.Publish(b.dispatcher, e)
	case BuildFinishedEvent:
		event.Publish(b.dispatcher, e)
	case SourceChangedEvent:
		event.Publish(b.dispatcher, e)
	case ReloadEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	case RecordSuppressedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives (type inference)
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e BuildFinishedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	// The kelindar/event library needs the concrete event type, so match
	// the handler signature against each known type
	switch h := handler.(type) {
	case func(BuildStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BuildFinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SourceChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ReloadEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordSuppressedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
