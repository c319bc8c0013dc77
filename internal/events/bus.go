package events

import (
	"sync"
	"time"

	"github.com/sphildreth/melodee/internal/logger"
)

// subscription pairs a handler with its type filter
type subscription struct {
	handler EventHandler
	types   map[EventType]bool // empty means all types
}

// Bus is the default in-process EventBus implementation
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	wg     sync.WaitGroup
	closed bool
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{}
}

// Publish delivers the event to matching subscribers on separate goroutines
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if len(sub.types) > 0 && !sub.types[event.Type] {
			continue
		}
		b.wg.Add(1)
		go func(h EventHandler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event handler panicked", "type", event.Type, "panic", r)
				}
			}()
			h(event)
		}(sub.handler)
	}
}

// Subscribe registers a handler for the given event types
func (b *Bus) Subscribe(handler EventHandler, types ...EventType) {
	filter := make(map[EventType]bool, len(types))
	for _, t := range types {
		filter[t] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{handler: handler, types: filter})
}

// Shutdown stops delivery and waits for in-flight handlers to finish
func (b *Bus) Shutdown() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}

var (
	globalBus     EventBus
	globalBusLock sync.RWMutex
)

// SetGlobalEventBus sets the global event bus instance
func SetGlobalEventBus(bus EventBus) {
	globalBusLock.Lock()
	defer globalBusLock.Unlock()
	globalBus = bus
}

// GetGlobalEventBus returns the global event bus instance
func GetGlobalEventBus() EventBus {
	globalBusLock.RLock()
	defer globalBusLock.RUnlock()
	return globalBus
}
