// Package app builds the services and registers the event bus handlers that
// react to committed settlements.
package app

import (
	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/handler/reconcile"
)

// setupEventBus registers all event handlers with the provided event Bus.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	logger := a.Deps.Logger

	bus.Register(
		events.EventTypeSettlementAnomaly.String(),
		reconcile.HandleAnomaly(a.Deps.Metrics, logger),
	)
	balanceChanged := reconcile.HandleBalanceChanged(a.AuditService, logger)
	bus.Register(events.EventTypeDepositApproved.String(), balanceChanged)
	bus.Register(events.EventTypeBonusApplied.String(), balanceChanged)
}
