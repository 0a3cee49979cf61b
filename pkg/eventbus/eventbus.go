// Package eventbus is the contract for fanning out settlement events.
package eventbus

import (
	"context"

	"github.com/gamewallet/wallet/pkg/domain/events"
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes events and dispatches them to handlers registered per event type.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}
