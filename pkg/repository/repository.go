package repository

import (
	"context"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/google/uuid"
)

// LedgerRepository defines data access for ledger entries.
//
// Lookups return domain.ErrNotFound when nothing matches. Methods returning a
// bool perform a single conditional update and report whether a row matched.
type LedgerRepository interface {
	Create(ctx context.Context, e *ledger.Entry) error
	Get(ctx context.Context, id uuid.UUID) (*ledger.Entry, error)
	// GetByOrderCode returns the deposit correlated with orderCode in any status.
	GetByOrderCode(ctx context.Context, orderCode int64) (*ledger.Entry, error)
	// FindOpenByOrderCode returns the deposit correlated with orderCode only while it is still open.
	FindOpenByOrderCode(ctx context.Context, orderCode int64) (*ledger.Entry, error)
	// Transition applies t only if the persisted status is still one of t.From.
	Transition(ctx context.Context, t ledger.Transition) (bool, error)
	// HasApprovedDeposit reports whether userID has an approved deposit other than exclude.
	HasApprovedDeposit(ctx context.Context, userID, exclude uuid.UUID) (bool, error)
	// GetBonusForDeposit returns the bonus entry sourced from depositID.
	GetBonusForDeposit(ctx context.Context, depositID uuid.UUID) (*ledger.Entry, error)
	// ClaimBonusEvaluation stamps BonusEvaluatedAt only if it is still unset.
	ClaimBonusEvaluation(ctx context.Context, depositID uuid.UUID, at time.Time) (bool, error)
	ListApproved(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error)
}

// BalanceRepository defines data access for the materialized per-user balance.
type BalanceRepository interface {
	// Get returns the balance of userID, a zero balance if none was ever credited.
	Get(ctx context.Context, userID uuid.UUID) (*ledger.Balance, error)
	// Credit adds delta to the balance in one atomic upsert.
	Credit(ctx context.Context, userID uuid.UUID, delta int64, at time.Time) error
	// Lock creates the balance row at zero if needed and holds it until the enclosing
	// transaction ends, so decisions about one user's history are taken one at a time.
	Lock(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// PromotionRepository defines data access for promotions and their codes.
type PromotionRepository interface {
	Create(ctx context.Context, p *promotion.Promotion) error
	Get(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error)
	List(ctx context.Context) ([]*promotion.Promotion, error)
	// ListCampaigns returns active first_deposit and time_based promotions.
	ListCampaigns(ctx context.Context) ([]*promotion.Promotion, error)
	// IncrementUses adds one use only while current_uses is below max_uses.
	IncrementUses(ctx context.Context, id uuid.UUID) (bool, error)
	// ReleaseUse gives back a use taken by IncrementUses.
	ReleaseUse(ctx context.Context, id uuid.UUID) error

	CreateCode(ctx context.Context, c *promotion.Code) error
	GetCode(ctx context.Context, code string) (*promotion.Code, error)
	// RedeemCode marks code used by userID only while it is still unused.
	RedeemCode(ctx context.Context, code string, userID uuid.UUID, at time.Time) (bool, error)
}
