// Package events defines the domain events emitted after settlement transitions commit.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is anything that can travel on the event bus.
type Event interface {
	Type() string
}

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeDepositApproved   EventType = "Deposit.Approved"
	EventTypeDepositRejected   EventType = "Deposit.Rejected"
	EventTypeBonusApplied      EventType = "Bonus.Applied"
	EventTypeSettlementAnomaly EventType = "Settlement.Anomaly"
)

// Types lists every event type with a constructor, for buses that decode payloads.
var Types = map[string]func() Event{
	EventTypeDepositApproved.String():   func() Event { return &DepositApproved{} },
	EventTypeDepositRejected.String():   func() Event { return &DepositRejected{} },
	EventTypeBonusApplied.String():      func() Event { return &BonusApplied{} },
	EventTypeSettlementAnomaly.String(): func() Event { return &SettlementAnomaly{} },
}

func (t EventType) String() string { return string(t) }

// Meta carries the fields shared by all settlement events.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderCode  int64     `json:"order_code"`
	UserID     uuid.UUID `json:"user_id"`
}

// OrderKey is the partition key for buses that keep one order's events ordered.
func (m Meta) OrderKey() int64 { return m.OrderCode }

func newMeta(orderCode int64, userID uuid.UUID, at time.Time) Meta {
	return Meta{ID: uuid.New(), OccurredAt: at, OrderCode: orderCode, UserID: userID}
}

// DepositApproved is emitted once a deposit entry is approved and its amount credited.
type DepositApproved struct {
	Meta
	EntryID      uuid.UUID `json:"entry_id"`
	Amount       int64     `json:"amount"`
	FirstDeposit bool      `json:"first_deposit"`
}

func (e *DepositApproved) Type() string { return EventTypeDepositApproved.String() }

// DepositRejected is emitted when the provider reports a failed payment.
type DepositRejected struct {
	Meta
	EntryID        uuid.UUID `json:"entry_id"`
	ProviderStatus string    `json:"provider_status"`
}

func (e *DepositRejected) Type() string { return EventTypeDepositRejected.String() }

// BonusApplied is emitted when a promotion bonus entry has been credited.
type BonusApplied struct {
	Meta
	DepositEntryID uuid.UUID `json:"deposit_entry_id"`
	BonusEntryID   uuid.UUID `json:"bonus_entry_id"`
	PromotionID    uuid.UUID `json:"promotion_id"`
	PromotionKind  string    `json:"promotion_kind"`
	Code           string    `json:"code,omitempty"`
	Amount         int64     `json:"amount"`
}

func (e *BonusApplied) Type() string { return EventTypeBonusApplied.String() }

// SettlementAnomaly records a callback that needs manual reconciliation or was ignored.
type SettlementAnomaly struct {
	Meta
	Reason         string `json:"reason"`
	LedgerAmount   int64  `json:"ledger_amount,omitempty"`
	CallbackAmount int64  `json:"callback_amount,omitempty"`
}

func (e *SettlementAnomaly) Type() string { return EventTypeSettlementAnomaly.String() }

// NewDepositApproved builds a DepositApproved event.
func NewDepositApproved(orderCode int64, userID, entryID uuid.UUID, amount int64, first bool, at time.Time) *DepositApproved {
	return &DepositApproved{
		Meta:         newMeta(orderCode, userID, at),
		EntryID:      entryID,
		Amount:       amount,
		FirstDeposit: first,
	}
}

// NewDepositRejected builds a DepositRejected event.
func NewDepositRejected(orderCode int64, userID, entryID uuid.UUID, providerStatus string, at time.Time) *DepositRejected {
	return &DepositRejected{
		Meta:           newMeta(orderCode, userID, at),
		EntryID:        entryID,
		ProviderStatus: providerStatus,
	}
}

// NewSettlementAnomaly builds a SettlementAnomaly event.
func NewSettlementAnomaly(orderCode int64, userID uuid.UUID, reason string, ledgerAmount, callbackAmount int64, at time.Time) *SettlementAnomaly {
	return &SettlementAnomaly{
		Meta:           newMeta(orderCode, userID, at),
		Reason:         reason,
		LedgerAmount:   ledgerAmount,
		CallbackAmount: callbackAmount,
	}
}
