// Package deposit opens deposit orders and reports their status to depositors.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/repository"
	promosvc "github.com/gamewallet/wallet/pkg/service/promotion"
	"github.com/google/uuid"
)

const (
	maxPromoCodeLen = 64
	// createAttempts bounds retries on an order code collision.
	createAttempts = 3
)

// Initiated is a freshly opened deposit and the way to pay for it.
type Initiated struct {
	Entry   *ledger.Entry
	Payable *payment.Payable
}

// Status is a deposit as seen by its owner.
type Status struct {
	Entry *ledger.Entry
	// Bonus is the bonus entry earned by the deposit, if any.
	Bonus *ledger.Entry
}

// Service opens deposit orders.
type Service struct {
	uow      repository.UnitOfWork
	codes    *ordercode.Generator
	provider payment.Source
	fallback payment.Source
	cfg      config.Deposit
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService creates a new deposit Service.
func NewService(deps config.Deps) *Service {
	var cfg config.Deposit
	if deps.Config != nil && deps.Config.Deposit != nil {
		cfg = *deps.Config.Deposit
	}
	return &Service{
		uow:      deps.Uow,
		codes:    deps.OrderCodes,
		provider: deps.PaymentProvider,
		fallback: deps.BankTransfer,
		cfg:      cfg,
		metrics:  deps.Metrics,
		logger:   deps.Logger.With("service", "deposit"),
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// Initiate opens a deposit and requests a payable reference for it. A payable
// failure never fails the deposit.
func (s *Service) Initiate(ctx context.Context, userID uuid.UUID, amount int64, promoCode string) (*Initiated, error) {
	entry, err := s.CreateDepositOrder(ctx, userID, amount, promoCode)
	if err != nil {
		return nil, err
	}
	return &Initiated{Entry: entry, Payable: s.RequestPayable(ctx, entry)}, nil
}

// CreateDepositOrder records an open deposit correlated with a new order code.
func (s *Service) CreateDepositOrder(ctx context.Context, userID uuid.UUID, amount int64, promoCode string) (*ledger.Entry, error) {
	if amount < s.cfg.MinAmount || (s.cfg.MaxAmount > 0 && amount > s.cfg.MaxAmount) {
		return nil, fmt.Errorf("%w: amount must be between %d and %d", domain.ErrInvalidAmount, s.cfg.MinAmount, s.cfg.MaxAmount)
	}
	promoCode = promosvc.NormalizeCode(promoCode)
	if len(promoCode) > maxPromoCodeLen {
		return nil, fmt.Errorf("%w: promo code longer than %d characters", domain.ErrValidation, maxPromoCodeLen)
	}
	method := ledger.Method(s.cfg.Method)
	if method == "" {
		method = ledger.MethodPaymentLink
	}
	logger := s.logger.With("user_id", userID, "amount", amount)

	var entry *ledger.Entry
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		code := s.codes.Next()
		entry, err = ledger.NewDeposit(
			userID,
			amount,
			ledger.Correlation{Method: method, OrderCode: code, PromoCode: promoCode},
			ordercode.Describe(s.cfg.DescriptionPrefix, code),
			s.clock(),
		)
		if err != nil {
			return nil, err
		}
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			repo, err := uow.LedgerRepository()
			if err != nil {
				return err
			}
			return repo.Create(ctx, entry)
		})
		if !errors.Is(err, domain.ErrPersistenceConflict) {
			break
		}
		logger.Warn("Order code collision, retrying", "order_code", code)
	}
	if err != nil {
		logger.Error("Failed to create deposit", "error", err)
		return nil, err
	}
	logger.Info("Deposit created", "entry_id", entry.ID, "order_code", entry.Correlation.OrderCode)
	s.metrics.IncDepositCreated()
	return entry, nil
}

// RequestPayable asks the payment provider for a payment link, falling back to a
// bank-transfer QR code, and finally to an informational message.
func (s *Service) RequestPayable(ctx context.Context, entry *ledger.Entry) *payment.Payable {
	order := &payment.Order{
		EntryID:     entry.ID,
		UserID:      entry.UserID,
		OrderCode:   entry.Correlation.OrderCode,
		Amount:      entry.Amount,
		Description: entry.Description,
	}
	logger := s.logger.With("entry_id", entry.ID, "order_code", order.OrderCode)

	for _, src := range []payment.Source{s.provider, s.fallback} {
		if src == nil {
			continue
		}
		p, err := src.Payable(ctx, order)
		if err != nil {
			logger.Warn("Payable source failed", "source", src.Name(), "error", err)
			continue
		}
		s.metrics.IncPayableSource(p.Source)
		return p
	}
	s.metrics.IncPayableSource(payment.SourceNone)
	return &payment.Payable{
		Source:  payment.SourceNone,
		Message: fmt.Sprintf("Online payment is unavailable. Transfer %d with the description %s.", order.Amount, order.Description),
	}
}

// GetDeposit returns a deposit owned by userID together with its bonus entry.
func (s *Service) GetDeposit(ctx context.Context, userID, entryID uuid.UUID) (*Status, error) {
	out := &Status{}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		e, err := repo.Get(ctx, entryID)
		if err != nil {
			return err
		}
		if e.Kind != ledger.KindDeposit {
			return domain.ErrNotFound
		}
		if e.UserID != userID {
			return domain.ErrForbidden
		}
		out.Entry = e
		out.Bonus, err = bonusFor(ctx, repo, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LookupOrder returns the deposit correlated with orderCode regardless of owner.
// It backs operator tooling, not the user-facing API.
func (s *Service) LookupOrder(ctx context.Context, orderCode int64) (*Status, error) {
	out := &Status{}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		e, err := repo.GetByOrderCode(ctx, orderCode)
		if err != nil {
			return err
		}
		out.Entry = e
		out.Bonus, err = bonusFor(ctx, repo, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func bonusFor(ctx context.Context, repo repository.LedgerRepository, e *ledger.Entry) (*ledger.Entry, error) {
	bonus, err := repo.GetBonusForDeposit(ctx, e.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return bonus, err
}

// GetBalance returns the materialized balance of userID.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*ledger.Balance, error) {
	repo, err := s.uow.BalanceRepository()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, userID)
}
