// Package reconcile holds event bus handlers that watch committed settlements
// for anything needing an operator.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/service/audit"
	"github.com/google/uuid"
)

// Auditor recomputes a user's balance from the ledger.
type Auditor interface {
	Audit(ctx context.Context, userID uuid.UUID) (*audit.Report, error)
}

// HandleAnomaly records SettlementAnomaly events for manual reconciliation.
func HandleAnomaly(m *metrics.Metrics, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "reconcile.HandleAnomaly", "event_type", e.Type())
		a, ok := e.(*events.SettlementAnomaly)
		if !ok {
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		m.IncAnomaly(a.Reason)
		log.Warn("Settlement needs reconciliation",
			"order_code", a.OrderCode,
			"user_id", a.UserID,
			"reason", a.Reason,
			"ledger_amount", a.LedgerAmount,
			"callback_amount", a.CallbackAmount,
		)
		return nil
	}
}

// HandleBalanceChanged audits the user behind a DepositApproved or BonusApplied
// event and reports drift between the counter and the ledger.
func HandleBalanceChanged(auditor Auditor, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "reconcile.HandleBalanceChanged", "event_type", e.Type())
		var userID uuid.UUID
		switch evt := e.(type) {
		case *events.DepositApproved:
			userID = evt.UserID
		case *events.BonusApplied:
			userID = evt.UserID
		default:
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		report, err := auditor.Audit(ctx, userID)
		if err != nil {
			return err
		}
		if !report.Consistent() {
			log.Error("Balance does not match ledger",
				"user_id", userID,
				"materialized", report.Materialized,
				"reconstructed", report.Reconstructed,
			)
		}
		return nil
	}
}
