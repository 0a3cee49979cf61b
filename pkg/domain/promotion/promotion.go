// Package promotion models bonus campaigns and the policy that picks at most one
// of them for a settled deposit.
package promotion

import (
	"errors"
	"fmt"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidBonus is returned when a promotion does not define exactly one payout.
	ErrInvalidBonus = errors.New("promotion must define exactly one of bonus percentage or bonus amount")
	// ErrExhausted is returned when a promotion has no remaining uses.
	ErrExhausted = errors.New("promotion exhausted")
	// ErrCodeUsed is returned when a promotion code has already been redeemed.
	ErrCodeUsed = errors.New("promotion code already used")
)

// Kind is the eligibility family of a promotion.
type Kind string

const (
	KindFirstDeposit Kind = "first_deposit"
	KindCodeBased    Kind = "code_based"
	KindTimeBased    Kind = "time_based"
)

var hundred = decimal.NewFromInt(100)

// Bonus is the payout of a promotion: either Percentage or Flat.
type Bonus interface {
	// Compute returns the bonus owed for a deposit amount, in the same minor unit.
	Compute(amount int64) int64
	isBonus()
}

// Percentage pays a share of the deposit, rounded down to the minor unit.
type Percentage struct {
	Rate decimal.Decimal
}

// Flat pays a fixed amount regardless of the deposit size.
type Flat struct {
	Amount int64
}

func (Percentage) isBonus() {}
func (Flat) isBonus()       {}

// Compute implements Bonus.
func (p Percentage) Compute(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(p.Rate).Div(hundred).Floor().IntPart()
}

// Compute implements Bonus.
func (f Flat) Compute(int64) int64 {
	return f.Amount
}

// NewPercentage validates a percentage in the 0..100 range.
func NewPercentage(rate decimal.Decimal) (Percentage, error) {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("%w: bonus percentage %s out of range", domain.ErrValidation, rate)
	}
	return Percentage{Rate: rate}, nil
}

// NewFlat validates a non-negative flat bonus.
func NewFlat(amount int64) (Flat, error) {
	if amount < 0 {
		return Flat{}, fmt.Errorf("%w: bonus amount must not be negative", domain.ErrValidation)
	}
	return Flat{Amount: amount}, nil
}

// BonusFrom builds the payout variant from its two storage columns, exactly one of which must be set.
func BonusFrom(percentage *decimal.Decimal, amount *int64) (Bonus, error) {
	switch {
	case percentage != nil && amount == nil:
		return NewPercentage(*percentage)
	case percentage == nil && amount != nil:
		return NewFlat(*amount)
	default:
		return nil, ErrInvalidBonus
	}
}

// BonusColumns is the inverse of BonusFrom.
func BonusColumns(b Bonus) (*decimal.Decimal, *int64) {
	switch v := b.(type) {
	case Percentage:
		rate := v.Rate
		return &rate, nil
	case Flat:
		amount := v.Amount
		return nil, &amount
	default:
		return nil, nil
	}
}

// Window is the active period of a promotion. End is exclusive; a nil End never closes.
type Window struct {
	Start time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.End == nil || t.Before(*w.End)
}

// Promotion is a campaign definition.
type Promotion struct {
	ID               uuid.UUID
	Title            string
	Kind             Kind
	Bonus            Bonus
	MinDeposit       *int64
	MaxUses          *int
	CurrentUses      int
	FirstDepositOnly bool
	Window           Window
	Active           bool
	CreatedAt        time.Time
}

// Exhausted reports whether CurrentUses has reached MaxUses.
func (p *Promotion) Exhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}

// MeetsMinimum reports whether a deposit amount satisfies MinDeposit.
func (p *Promotion) MeetsMinimum(amount int64) bool {
	return p.MinDeposit == nil || amount >= *p.MinDeposit
}

// Eligible reports whether the promotion is active, open, not exhausted and satisfied by amount.
func (p *Promotion) Eligible(amount int64, at time.Time) bool {
	return p.Active && p.Window.Contains(at) && !p.Exhausted() && p.MeetsMinimum(amount)
}

// Validate checks the invariants of a promotion definition.
func (p *Promotion) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: promotion title is required", domain.ErrValidation)
	}
	switch p.Kind {
	case KindFirstDeposit, KindCodeBased, KindTimeBased:
	default:
		return fmt.Errorf("%w: unknown promotion kind %q", domain.ErrValidation, p.Kind)
	}
	if p.Bonus == nil {
		return ErrInvalidBonus
	}
	if p.MaxUses != nil && *p.MaxUses < 0 {
		return fmt.Errorf("%w: max uses must not be negative", domain.ErrValidation)
	}
	if p.MaxUses != nil && p.CurrentUses > *p.MaxUses {
		return fmt.Errorf("%w: current uses exceed max uses", domain.ErrValidation)
	}
	if p.Window.End != nil && !p.Window.End.After(p.Window.Start) {
		return fmt.Errorf("%w: promotion window ends before it starts", domain.ErrValidation)
	}
	return nil
}

// Code is a single-use redemption token bound to one promotion.
type Code struct {
	Code        string
	PromotionID uuid.UUID
	Used        bool
	UsedBy      *uuid.UUID
	UsedAt      *time.Time
}
