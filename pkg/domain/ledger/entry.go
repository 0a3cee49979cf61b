// Package ledger models movements against a user's balance.
//
// An Entry is created open (awaiting payment or pending) and moves to exactly one
// terminal status. Balance effects happen only on the transition into StatusApproved.
package ledger

import (
	"fmt"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/google/uuid"
)

// Kind is the type of movement an entry records.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdraw   Kind = "withdraw"
	KindBonus      Kind = "bonus"
	KindCommission Kind = "commission"
	KindRefund     Kind = "refund"
)

// Sign returns +1 for kinds that credit the balance and -1 for kinds that debit it.
func (k Kind) Sign() int64 {
	switch k {
	case KindWithdraw, KindCommission:
		return -1
	default:
		return 1
	}
}

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
)

// OpenStatuses are the statuses a settlement may transition from.
var OpenStatuses = []Status{StatusAwaitingPayment, StatusPending}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// Method is the payment rail a deposit was requested through.
type Method string

const (
	MethodPaymentLink  Method = "payment_link"
	MethodBankTransfer Method = "bank_transfer"
)

// Actors recorded in ApprovedBy for automated transitions.
const (
	ActorSettlement = "system:settlement"
	ActorPromotion  = "system:promotion"
)

// Correlation links a deposit entry to the external payment confirmation.
// PromoCode is recorded intent only; it is validated after payment succeeds.
type Correlation struct {
	Method    Method `json:"method"`
	OrderCode int64  `json:"order_code"`
	PromoCode string `json:"promo_code,omitempty"`
}

// HasPromoCode reports whether the depositor asked for a promotion code.
func (c Correlation) HasPromoCode() bool {
	return c.PromoCode != ""
}

// Entry is one recorded movement against a user's balance.
type Entry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Kind        Kind
	Amount      int64
	Status      Status
	Correlation Correlation
	Description string

	// SourceEntryID points a bonus entry at the deposit that earned it.
	SourceEntryID *uuid.UUID
	// PromotionID is the promotion a bonus entry was paid from.
	PromotionID *uuid.UUID
	// FirstDeposit is captured on approval, before this entry counts as a prior deposit.
	FirstDeposit *bool
	// BonusEvaluatedAt is set once promotion selection has completed for a deposit.
	BonusEvaluatedAt *time.Time

	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDeposit creates an open deposit entry awaiting its payment confirmation.
func NewDeposit(
	userID uuid.UUID,
	amount int64,
	correlation Correlation,
	description string,
	now time.Time,
) (*Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", domain.ErrInvalidAmount)
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return &Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        KindDeposit,
		Amount:      amount,
		Status:      StatusAwaitingPayment,
		Correlation: correlation,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewBonus creates an already approved bonus entry credited for the given deposit.
func NewBonus(deposit *Entry, promotionID uuid.UUID, amount int64, now time.Time) *Entry {
	source := deposit.ID
	promo := promotionID
	actor := ActorPromotion
	approvedAt := now
	return &Entry{
		ID:            uuid.New(),
		UserID:        deposit.UserID,
		Kind:          KindBonus,
		Amount:        amount,
		Status:        StatusApproved,
		Description:   deposit.Description,
		SourceEntryID: &source,
		PromotionID:   &promo,
		ApprovedBy:    &actor,
		ApprovedAt:    &approvedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsOpen reports whether the entry can still be settled.
func (e *Entry) IsOpen() bool {
	return !e.Status.IsTerminal()
}

// Delta is the signed balance contribution of the entry once approved.
func (e *Entry) Delta() int64 {
	return e.Kind.Sign() * e.Amount
}

// NeedsBonusEvaluation reports whether an approved deposit still has to run promotion selection.
func (e *Entry) NeedsBonusEvaluation() bool {
	return e.Kind == KindDeposit && e.Status == StatusApproved && e.BonusEvaluatedAt == nil
}

// Transition describes a conditional status change: it applies only while the
// persisted status is still one of From.
type Transition struct {
	EntryID      uuid.UUID
	From         []Status
	To           Status
	Actor        string
	At           time.Time
	FirstDeposit *bool
}

// Settle builds the transition that moves an open entry into a terminal status.
func (e *Entry) Settle(to Status, actor string, at time.Time) (Transition, error) {
	if e.Status.IsTerminal() {
		return Transition{}, fmt.Errorf("%w: entry %s is %s", domain.ErrAlreadySettled, e.ID, e.Status)
	}
	if !to.IsTerminal() {
		return Transition{}, fmt.Errorf("%w: %s is not a terminal status", domain.ErrValidation, to)
	}
	return Transition{
		EntryID: e.ID,
		From:    []Status{e.Status},
		To:      to,
		Actor:   actor,
		At:      at,
	}, nil
}

// Apply mirrors a committed transition onto the in-memory entry.
func (e *Entry) Apply(t Transition) {
	e.Status = t.To
	e.UpdatedAt = t.At
	if t.FirstDeposit != nil {
		first := *t.FirstDeposit
		e.FirstDeposit = &first
	}
	if t.To == StatusApproved {
		actor := t.Actor
		at := t.At
		e.ApprovedBy = &actor
		e.ApprovedAt = &at
	}
}

// Balance is the materialized per-user balance counter.
type Balance struct {
	UserID    uuid.UUID
	Amount    int64
	UpdatedAt time.Time
}
