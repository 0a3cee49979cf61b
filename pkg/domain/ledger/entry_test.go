package ledger

import (
	"testing"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newDeposit(t *testing.T, amount int64) *Entry {
	t.Helper()
	e, err := NewDeposit(uuid.New(), amount, Correlation{Method: MethodPaymentLink, OrderCode: 42}, "NAP0000000000000042", now)
	require.NoError(t, err)
	return e
}

func TestNewDeposit(t *testing.T) {
	e := newDeposit(t, 100_000)
	assert.Equal(t, KindDeposit, e.Kind)
	assert.Equal(t, StatusAwaitingPayment, e.Status)
	assert.True(t, e.IsOpen())
	assert.Nil(t, e.ApprovedAt)
	assert.Equal(t, int64(100_000), e.Delta())

	_, err := NewDeposit(uuid.New(), 0, Correlation{}, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = NewDeposit(uuid.New(), -5, Correlation{}, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = NewDeposit(uuid.Nil, 10, Correlation{}, "", now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSettleAndApply(t *testing.T) {
	e := newDeposit(t, 50_000)
	later := now.Add(time.Minute)

	tr, err := e.Settle(StatusApproved, ActorSettlement, later)
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusAwaitingPayment}, tr.From)
	assert.Equal(t, StatusApproved, tr.To)

	first := true
	tr.FirstDeposit = &first
	e.Apply(tr)
	assert.Equal(t, StatusApproved, e.Status)
	require.NotNil(t, e.ApprovedBy)
	assert.Equal(t, ActorSettlement, *e.ApprovedBy)
	assert.Equal(t, later, *e.ApprovedAt)
	assert.True(t, *e.FirstDeposit)
	assert.True(t, e.NeedsBonusEvaluation())

	_, err = e.Settle(StatusRejected, ActorSettlement, later)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestSettle_Rejected(t *testing.T) {
	e := newDeposit(t, 50_000)
	tr, err := e.Settle(StatusRejected, ActorSettlement, now)
	require.NoError(t, err)
	e.Apply(tr)
	assert.Equal(t, StatusRejected, e.Status)
	assert.Nil(t, e.ApprovedAt)
	assert.False(t, e.NeedsBonusEvaluation())
}

func TestSettle_NonTerminalTarget(t *testing.T) {
	e := newDeposit(t, 50_000)
	_, err := e.Settle(StatusPending, ActorSettlement, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewBonus(t *testing.T) {
	d := newDeposit(t, 200_000)
	promo := uuid.New()
	b := NewBonus(d, promo, 200_000, now)

	assert.Equal(t, KindBonus, b.Kind)
	assert.Equal(t, StatusApproved, b.Status)
	assert.Equal(t, d.UserID, b.UserID)
	assert.Equal(t, d.ID, *b.SourceEntryID)
	assert.Equal(t, promo, *b.PromotionID)
	assert.Equal(t, ActorPromotion, *b.ApprovedBy)
	assert.NotEqual(t, d.ID, b.ID)
}

func TestKindSign(t *testing.T) {
	assert.Equal(t, int64(1), KindDeposit.Sign())
	assert.Equal(t, int64(1), KindBonus.Sign())
	assert.Equal(t, int64(1), KindRefund.Sign())
	assert.Equal(t, int64(-1), KindWithdraw.Sign())
	assert.Equal(t, int64(-1), KindCommission.Sign())
}
