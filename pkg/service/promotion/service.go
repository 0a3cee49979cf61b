// Package promotion applies at most one promotion bonus to a settled deposit and
// manages promotion definitions and their redemption codes.
package promotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
)

// Result describes the bonus stage outcome for one deposit.
type Result struct {
	// Entry is the bonus entry, nil when no promotion paid out.
	Entry     *ledger.Entry
	Promotion *promotion.Promotion
	Rule      promotion.Rule
	Code      string
	// Replayed is true when selection had already run for the deposit and nothing was changed.
	Replayed bool
	// Skipped holds the candidates lost to concurrent settlements, wrapping
	// promotion.ErrExhausted or promotion.ErrCodeUsed.
	Skipped []error
}

// Applied reports whether a bonus entry exists for the deposit.
func (r *Result) Applied() bool {
	return r != nil && r.Entry != nil
}

// Service runs promotion selection and keeps promotion definitions.
type Service struct {
	uow      repository.UnitOfWork
	eventBus eventbus.Bus
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService creates a new promotion Service.
func NewService(deps config.Deps) *Service {
	return &Service{
		uow:      deps.Uow,
		eventBus: deps.EventBus,
		metrics:  deps.Metrics,
		logger:   deps.Logger.With("service", "promotion"),
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// Apply evaluates promotions for an approved deposit and credits at most one bonus.
//
// Selection runs at most once per deposit: the evaluation is claimed first, every
// later call returns the bonus recorded by the first one.
func (s *Service) Apply(ctx context.Context, deposit *ledger.Entry) (*Result, error) {
	if deposit == nil || deposit.Kind != ledger.KindDeposit || deposit.Status != ledger.StatusApproved {
		return nil, fmt.Errorf("%w: bonus evaluation requires an approved deposit", domain.ErrValidation)
	}
	logger := s.logger.With(
		"entry_id", deposit.ID,
		"user_id", deposit.UserID,
		"order_code", deposit.Correlation.OrderCode,
	)
	now := s.clock()
	res := &Result{}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledgerRepo, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		promoRepo, err := uow.PromotionRepository()
		if err != nil {
			return err
		}
		balanceRepo, err := uow.BalanceRepository()
		if err != nil {
			return err
		}

		claimed, err := ledgerRepo.ClaimBonusEvaluation(ctx, deposit.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			res.Replayed = true
			existing, err := ledgerRepo.GetBonusForDeposit(ctx, deposit.ID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			res.Entry = existing
			return nil
		}

		in, err := s.selectionInput(ctx, ledgerRepo, promoRepo, deposit, now)
		if err != nil {
			return err
		}
		for _, c := range promotion.Candidates(in) {
			amount := c.Promotion.Bonus.Compute(deposit.Amount)
			if amount <= 0 {
				logger.Info("Selected promotion pays nothing", "promotion_id", c.Promotion.ID, "rule", c.Rule)
				break
			}
			ok, err := promoRepo.IncrementUses(ctx, c.Promotion.ID)
			if err != nil {
				return err
			}
			if !ok {
				skip := fmt.Errorf("%w: promotion %s", promotion.ErrExhausted, c.Promotion.ID)
				logger.Warn("Promotion candidate skipped", "promotion_id", c.Promotion.ID, "error", skip)
				s.metrics.IncRaceLost("promotion_uses")
				res.Skipped = append(res.Skipped, skip)
				continue
			}
			if c.Code != nil {
				ok, err := promoRepo.RedeemCode(ctx, c.Code.Code, deposit.UserID, now)
				if err != nil {
					return err
				}
				if !ok {
					skip := fmt.Errorf("%w: %s", promotion.ErrCodeUsed, c.Code.Code)
					logger.Warn("Promotion candidate skipped", "promotion_id", c.Promotion.ID, "error", skip)
					s.metrics.IncRaceLost("promotion_code")
					if err := promoRepo.ReleaseUse(ctx, c.Promotion.ID); err != nil {
						return err
					}
					res.Skipped = append(res.Skipped, skip)
					continue
				}
				res.Code = c.Code.Code
			}

			bonus := ledger.NewBonus(deposit, c.Promotion.ID, amount, now)
			if err := ledgerRepo.Create(ctx, bonus); err != nil {
				return err
			}
			if err := balanceRepo.Credit(ctx, deposit.UserID, bonus.Amount, now); err != nil {
				return err
			}
			res.Entry = bonus
			res.Promotion = c.Promotion
			res.Rule = c.Rule
			break
		}
		return nil
	})
	if err != nil {
		logger.Error("Bonus evaluation failed", "error", err)
		return nil, err
	}

	if res.Replayed || res.Entry == nil {
		return res, nil
	}

	logger.Info("Bonus applied",
		"promotion_id", res.Promotion.ID,
		"rule", res.Rule,
		"amount", res.Entry.Amount,
	)
	s.metrics.IncBonusApplied(string(res.Promotion.Kind), res.Entry.Amount)
	evt := &events.BonusApplied{
		Meta: events.Meta{
			ID:         uuid.New(),
			OccurredAt: now,
			OrderCode:  deposit.Correlation.OrderCode,
			UserID:     deposit.UserID,
		},
		DepositEntryID: deposit.ID,
		BonusEntryID:   res.Entry.ID,
		PromotionID:    res.Promotion.ID,
		PromotionKind:  string(res.Promotion.Kind),
		Code:           res.Code,
		Amount:         res.Entry.Amount,
	}
	if err := s.eventBus.Emit(ctx, evt); err != nil {
		logger.Error("Failed to emit event", "event", evt.Type(), "error", err)
	}
	return res, nil
}

func (s *Service) selectionInput(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	promoRepo repository.PromotionRepository,
	deposit *ledger.Entry,
	now time.Time,
) (promotion.SelectionInput, error) {
	in := promotion.SelectionInput{Amount: deposit.Amount, At: now}

	if deposit.FirstDeposit != nil {
		in.FirstDeposit = *deposit.FirstDeposit
	} else {
		prior, err := ledgerRepo.HasApprovedDeposit(ctx, deposit.UserID, deposit.ID)
		if err != nil {
			return in, err
		}
		in.FirstDeposit = !prior
	}

	if deposit.Correlation.HasPromoCode() {
		code, err := promoRepo.GetCode(ctx, deposit.Correlation.PromoCode)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Info("Promotion code not found", "code", deposit.Correlation.PromoCode)
		case err != nil:
			return in, err
		default:
			p, err := promoRepo.Get(ctx, code.PromotionID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return in, err
			}
			in.Code = code
			in.CodePromotion = p
		}
	}

	campaigns, err := promoRepo.ListCampaigns(ctx)
	if err != nil {
		return in, err
	}
	in.Campaigns = campaigns
	return in, nil
}

// CreatePromotion validates and stores a new promotion definition.
func (s *Service) CreatePromotion(ctx context.Context, p *promotion.Promotion) (*promotion.Promotion, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.clock()
	}
	if p.Window.Start.IsZero() {
		p.Window.Start = p.CreatedAt
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.PromotionRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Promotion created", "promotion_id", p.ID, "kind", p.Kind, "title", p.Title)
	return p, nil
}

// CreateCode binds a new single-use code to a code_based promotion.
func (s *Service) CreateCode(ctx context.Context, promotionID uuid.UUID, code string) (*promotion.Code, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: promotion code is required", domain.ErrValidation)
	}
	c := &promotion.Code{Code: code, PromotionID: promotionID}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.PromotionRepository()
		if err != nil {
			return err
		}
		p, err := repo.Get(ctx, promotionID)
		if err != nil {
			return err
		}
		if p.Kind != promotion.KindCodeBased {
			return fmt.Errorf("%w: codes can only be bound to %s promotions", domain.ErrValidation, promotion.KindCodeBased)
		}
		return repo.CreateCode(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListPromotions returns every promotion, newest first.
func (s *Service) ListPromotions(ctx context.Context) (ps []*promotion.Promotion, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.PromotionRepository()
		if err != nil {
			return err
		}
		ps, err = repo.List(ctx)
		return err
	})
	return
}

// NormalizeCode is the canonical form codes are stored and looked up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
