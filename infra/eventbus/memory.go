package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/eventbus"
)

// MemoryEventBus dispatches synchronously to in-process handlers.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type. Handler
// errors and panics are logged and do not reach the emitter.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[event.Type()]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("panic recovered in event handler", "type", event.Type(), "panic", r)
				}
			}()
			if err := handler(ctx, event); err != nil {
				b.logger.Error("failed to process event", "type", event.Type(), "error", err)
			}
		}()
	}
	return nil
}

// Published returns a copy of every emitted event. Useful in tests.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// ClearPublished forgets emitted events.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)
