package repository

import (
	"time"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the persisted form of ledger.Entry. Correlation is stored as
// explicit columns; Description is a derived display value only.
type LedgerEntry struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind             string     `gorm:"type:varchar(16);not null"`
	Amount           int64      `gorm:"not null"`
	Status           string     `gorm:"type:varchar(32);not null"`
	Method           string     `gorm:"type:varchar(32)"`
	OrderCode        *int64     `gorm:"column:order_code"`
	PromoCode        *string    `gorm:"type:varchar(64);column:promo_code"`
	Description      string     `gorm:"type:varchar(25)"`
	SourceEntryID    *uuid.UUID `gorm:"type:uuid;column:source_entry_id"`
	PromotionID      *uuid.UUID `gorm:"type:uuid;column:promotion_id"`
	FirstDeposit     *bool      `gorm:"column:first_deposit"`
	BonusEvaluatedAt *time.Time `gorm:"column:bonus_evaluated_at"`
	ApprovedBy       *string    `gorm:"type:varchar(64);column:approved_by"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func fromEntry(e *ledger.Entry) LedgerEntry {
	m := LedgerEntry{
		ID:               e.ID,
		UserID:           e.UserID,
		Kind:             string(e.Kind),
		Amount:           e.Amount,
		Status:           string(e.Status),
		Method:           string(e.Correlation.Method),
		Description:      e.Description,
		SourceEntryID:    e.SourceEntryID,
		PromotionID:      e.PromotionID,
		FirstDeposit:     e.FirstDeposit,
		BonusEvaluatedAt: e.BonusEvaluatedAt,
		ApprovedBy:       e.ApprovedBy,
		ApprovedAt:       e.ApprovedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.Correlation.OrderCode != 0 {
		code := e.Correlation.OrderCode
		m.OrderCode = &code
	}
	if e.Correlation.HasPromoCode() {
		promo := e.Correlation.PromoCode
		m.PromoCode = &promo
	}
	return m
}

func (m *LedgerEntry) toDomain() *ledger.Entry {
	e := &ledger.Entry{
		ID:               m.ID,
		UserID:           m.UserID,
		Kind:             ledger.Kind(m.Kind),
		Amount:           m.Amount,
		Status:           ledger.Status(m.Status),
		Correlation:      ledger.Correlation{Method: ledger.Method(m.Method)},
		Description:      m.Description,
		SourceEntryID:    m.SourceEntryID,
		PromotionID:      m.PromotionID,
		FirstDeposit:     m.FirstDeposit,
		BonusEvaluatedAt: m.BonusEvaluatedAt,
		ApprovedBy:       m.ApprovedBy,
		ApprovedAt:       m.ApprovedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.OrderCode != nil {
		e.Correlation.OrderCode = *m.OrderCode
	}
	if m.PromoCode != nil {
		e.Correlation.PromoCode = *m.PromoCode
	}
	return e
}

// Balance is the materialized balance counter, one row per user.
type Balance struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Amount    int64     `gorm:"not null"`
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "balances"
}

// Promotion stores the payout variant as two columns, exactly one of which is set.
type Promotion struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Title            string           `gorm:"type:varchar(255);not null"`
	Kind             string           `gorm:"type:varchar(32);not null"`
	BonusPercentage  *decimal.Decimal `gorm:"type:decimal(5,2);column:bonus_percentage"`
	BonusAmount      *int64           `gorm:"column:bonus_amount"`
	MinDeposit       *int64           `gorm:"column:min_deposit"`
	MaxUses          *int             `gorm:"column:max_uses"`
	CurrentUses      int              `gorm:"not null"`
	FirstDepositOnly bool             `gorm:"column:first_deposit_only;not null"`
	StartsAt         time.Time        `gorm:"not null"`
	EndsAt           *time.Time
	IsActive         bool `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Promotion) TableName() string {
	return "promotions"
}

func fromPromotion(p *promotion.Promotion) Promotion {
	pct, amount := promotion.BonusColumns(p.Bonus)
	return Promotion{
		ID:               p.ID,
		Title:            p.Title,
		Kind:             string(p.Kind),
		BonusPercentage:  pct,
		BonusAmount:      amount,
		MinDeposit:       p.MinDeposit,
		MaxUses:          p.MaxUses,
		CurrentUses:      p.CurrentUses,
		FirstDepositOnly: p.FirstDepositOnly,
		StartsAt:         p.Window.Start,
		EndsAt:           p.Window.End,
		IsActive:         p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.CreatedAt,
	}
}

func (m *Promotion) toDomain() (*promotion.Promotion, error) {
	bonus, err := promotion.BonusFrom(m.BonusPercentage, m.BonusAmount)
	if err != nil {
		return nil, err
	}
	return &promotion.Promotion{
		ID:               m.ID,
		Title:            m.Title,
		Kind:             promotion.Kind(m.Kind),
		Bonus:            bonus,
		MinDeposit:       m.MinDeposit,
		MaxUses:          m.MaxUses,
		CurrentUses:      m.CurrentUses,
		FirstDepositOnly: m.FirstDepositOnly,
		Window:           promotion.Window{Start: m.StartsAt, End: m.EndsAt},
		Active:           m.IsActive,
		CreatedAt:        m.CreatedAt,
	}, nil
}

type PromotionCode struct {
	Code        string     `gorm:"type:varchar(64);primaryKey"`
	PromotionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	IsUsed      bool       `gorm:"not null"`
	UsedBy      *uuid.UUID `gorm:"type:uuid"`
	UsedAt      *time.Time
	CreatedAt   time.Time
}

func (PromotionCode) TableName() string {
	return "promotion_codes"
}

func (m *PromotionCode) toDomain() *promotion.Code {
	return &promotion.Code{
		Code:        m.Code,
		PromotionID: m.PromotionID,
		Used:        m.IsUsed,
		UsedBy:      m.UsedBy,
		UsedAt:      m.UsedAt,
	}
}
