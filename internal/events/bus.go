package events

import (
	"sync"

	"github.com/charleschow/footy-advisor/internal/telemetry"
)

// Handler processes an event. A returned error is logged and dispatch
// continues with the remaining handlers.
type Handler func(Event) error

// Bus is a synchronous in-process event bus. Handlers run in
// registration order on the publisher's goroutine; anything slow
// (sinks, sockets) should hand off to its own goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish dispatches an event to every handler registered for its type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			telemetry.Warnf("events: %s handler: %v", e.Type, err)
		}
	}
}
