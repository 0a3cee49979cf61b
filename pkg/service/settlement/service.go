// Package settlement turns authenticated payment confirmations into exactly one
// terminal ledger transition per order, followed by the promotion stage.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/repository"
	promosvc "github.com/gamewallet/wallet/pkg/service/promotion"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Anomaly reasons carried by events.SettlementAnomaly.
const (
	ReasonUnknownOrder    = "unknown_order"
	ReasonAmountMismatch  = "amount_mismatch"
	ReasonUnsettledStatus = "unsettled_status"
)

// BonusApplier runs the promotion stage for an approved deposit.
type BonusApplier interface {
	Apply(ctx context.Context, deposit *ledger.Entry) (*promosvc.Result, error)
}

// Result is the outcome of one settlement attempt.
type Result struct {
	// Outcome is one of the metrics.Outcome* values.
	Outcome string
	// Status is the entry's status after the attempt; empty for unknown orders.
	Status    ledger.Status
	OrderCode int64
	Entry     *ledger.Entry
	Bonus     *promosvc.Result
	// Duplicate is true when the order had already been settled by an earlier confirmation.
	Duplicate bool
}

// Service settles deposits from payment confirmations.
type Service struct {
	uow        repository.UnitOfWork
	promotions BonusApplier
	eventBus   eventbus.Bus
	metrics    *metrics.Metrics
	logger     *slog.Logger
	group      singleflight.Group
	clock      func() time.Time
}

// NewService creates a new settlement Service.
func NewService(deps config.Deps, promotions BonusApplier) *Service {
	return &Service{
		uow:        deps.Uow,
		promotions: promotions,
		eventBus:   deps.EventBus,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("service", "settlement"),
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// Settle applies a payment confirmation to the deposit correlated with its order code.
//
// Replays are no-ops that report the entry's current status. An unknown order code
// is reported, not failed. Only an amount mismatch or a storage error returns an error.
// Concurrent identical confirmations in this process collapse into one attempt.
func (s *Service) Settle(ctx context.Context, evt payment.Event) (*Result, error) {
	start := time.Now()
	key := strconv.FormatInt(evt.OrderCode, 10) + ":" + strconv.FormatInt(evt.Amount, 10) + ":" + evt.StatusCode
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.settle(ctx, evt)
	})
	res, _ := v.(*Result)
	switch {
	case errors.Is(err, domain.ErrAmountMismatch):
		s.metrics.ObserveSettlement(metrics.OutcomeAmountMismatch, time.Since(start))
	case err != nil:
		s.metrics.ObserveSettlement(metrics.OutcomeError, time.Since(start))
	default:
		s.metrics.ObserveSettlement(res.Outcome, time.Since(start))
	}
	return res, err
}

func (s *Service) settle(ctx context.Context, evt payment.Event) (*Result, error) {
	logger := s.logger.With("order_code", evt.OrderCode, "provider_status", evt.StatusCode)
	if evt.OrderCode <= 0 {
		return nil, fmt.Errorf("%w: order code must be positive", domain.ErrValidation)
	}

	ledgerRepo, err := s.uow.LedgerRepository()
	if err != nil {
		return nil, err
	}
	entry, err := ledgerRepo.FindOpenByOrderCode(ctx, evt.OrderCode)
	if errors.Is(err, domain.ErrNotFound) {
		return s.resolveClosed(ctx, logger, evt)
	}
	if err != nil {
		logger.Error("Failed to look up open deposit", "error", err)
		return nil, err
	}
	logger = logger.With("entry_id", entry.ID, "user_id", entry.UserID)

	if !evt.Succeeded() && !evt.Failed() {
		logger.Warn("Callback status does not settle the deposit")
		s.emit(ctx, logger, events.NewSettlementAnomaly(
			evt.OrderCode, entry.UserID, ReasonUnsettledStatus, entry.Amount, evt.Amount, s.clock()))
		return &Result{
			Outcome:   metrics.OutcomeUnsettled,
			Status:    entry.Status,
			OrderCode: evt.OrderCode,
			Entry:     entry,
		}, nil
	}

	if entry.Amount != evt.Amount {
		logger.Warn("Callback amount does not match ledger", "ledger_amount", entry.Amount, "callback_amount", evt.Amount)
		s.emit(ctx, logger, events.NewSettlementAnomaly(
			evt.OrderCode, entry.UserID, ReasonAmountMismatch, entry.Amount, evt.Amount, s.clock()))
		return nil, fmt.Errorf("%w: ledger %d, callback %d", domain.ErrAmountMismatch, entry.Amount, evt.Amount)
	}

	to := ledger.StatusRejected
	if evt.Succeeded() {
		to = ledger.StatusApproved
	}
	now := s.clock()

	var applied bool
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledgerRepo, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		balanceRepo, err := uow.BalanceRepository()
		if err != nil {
			return err
		}
		t, err := entry.Settle(to, ledger.ActorSettlement, now)
		if err != nil {
			return err
		}
		if to == ledger.StatusApproved {
			// Concurrent approvals for the same user must not both see an empty history.
			if err := balanceRepo.Lock(ctx, entry.UserID, now); err != nil {
				return err
			}
			prior, err := ledgerRepo.HasApprovedDeposit(ctx, entry.UserID, entry.ID)
			if err != nil {
				return err
			}
			first := !prior
			t.FirstDeposit = &first
		}
		applied, err = ledgerRepo.Transition(ctx, t)
		if err != nil || !applied {
			return err
		}
		entry.Apply(t)
		if to == ledger.StatusApproved {
			return balanceRepo.Credit(ctx, entry.UserID, entry.Delta(), now)
		}
		return nil
	})
	if err != nil {
		logger.Error("Settlement transaction failed", "error", err)
		return nil, err
	}
	if !applied {
		logger.Info("Deposit settled concurrently")
		s.metrics.IncRaceLost("transition")
		return s.resolveClosed(ctx, logger, evt)
	}

	res := &Result{Status: entry.Status, OrderCode: evt.OrderCode, Entry: entry}
	if to == ledger.StatusRejected {
		logger.Info("Deposit rejected")
		res.Outcome = metrics.OutcomeRejected
		s.emit(ctx, logger, events.NewDepositRejected(evt.OrderCode, entry.UserID, entry.ID, evt.StatusCode, now))
		return res, nil
	}

	logger.Info("Deposit approved", "amount", entry.Amount, "first_deposit", *entry.FirstDeposit)
	res.Outcome = metrics.OutcomeApproved
	s.emit(ctx, logger, events.NewDepositApproved(
		evt.OrderCode, entry.UserID, entry.ID, entry.Amount, *entry.FirstDeposit, now))

	res.Bonus, err = s.promotions.Apply(ctx, entry)
	if err != nil {
		return res, fmt.Errorf("deposit %s approved, bonus evaluation pending: %w", entry.ID, err)
	}
	return res, nil
}

// resolveClosed handles a confirmation whose order has no open deposit: either a
// replay of a settled order or an order code this wallet never issued.
func (s *Service) resolveClosed(ctx context.Context, logger *slog.Logger, evt payment.Event) (*Result, error) {
	ledgerRepo, err := s.uow.LedgerRepository()
	if err != nil {
		return nil, err
	}
	entry, err := ledgerRepo.GetByOrderCode(ctx, evt.OrderCode)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Callback for unknown order")
		s.emit(ctx, logger, events.NewSettlementAnomaly(
			evt.OrderCode, uuid.Nil, ReasonUnknownOrder, 0, evt.Amount, s.clock()))
		return &Result{Outcome: metrics.OutcomeUnknownOrder, OrderCode: evt.OrderCode}, nil
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Outcome:   metrics.OutcomeDuplicate,
		Status:    entry.Status,
		OrderCode: evt.OrderCode,
		Entry:     entry,
		Duplicate: true,
	}
	logger.Info("Deposit already settled", "entry_id", entry.ID, "status", entry.Status)

	// An approval whose promotion stage never completed is finished by the replay.
	if entry.NeedsBonusEvaluation() {
		logger.Info("Resuming bonus evaluation", "entry_id", entry.ID)
		res.Bonus, err = s.promotions.Apply(ctx, entry)
		if err != nil {
			return res, fmt.Errorf("deposit %s approved, bonus evaluation pending: %w", entry.ID, err)
		}
	}
	return res, nil
}

func (s *Service) emit(ctx context.Context, logger *slog.Logger, evt events.Event) {
	if err := s.eventBus.Emit(ctx, evt); err != nil {
		logger.Error("Failed to emit event", "event", evt.Type(), "error", err)
	}
}
