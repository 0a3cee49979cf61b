package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func seedDeposit(t *testing.T, uow *UoW, orderCode int64, amount int64) *ledger.Entry {
	t.Helper()
	e, err := ledger.NewDeposit(uuid.New(), amount, ledger.Correlation{Method: ledger.MethodPaymentLink, OrderCode: orderCode}, "NAP", now)
	require.NoError(t, err)
	repo, err := uow.LedgerRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestDo_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	e := seedDeposit(t, uow, 1, 100)
	boom := errors.New("boom")

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		lr, _ := tx.LedgerRepository()
		br, _ := tx.BalanceRepository()
		tr, err := e.Settle(ledger.StatusApproved, ledger.ActorSettlement, now)
		require.NoError(t, err)
		ok, err := lr.Transition(ctx, tr)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, br.Credit(ctx, e.UserID, e.Amount, now))
		return boom
	})
	require.ErrorIs(t, err, boom)

	lr, _ := uow.LedgerRepository()
	got, err := lr.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusAwaitingPayment, got.Status)

	br, _ := uow.BalanceRepository()
	bal, err := br.Get(ctx, e.UserID)
	require.NoError(t, err)
	assert.Zero(t, bal.Amount)
}

func TestTransition_Conditional(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	e := seedDeposit(t, uow, 2, 100)
	lr, _ := uow.LedgerRepository()

	tr, err := e.Settle(ledger.StatusApproved, ledger.ActorSettlement, now)
	require.NoError(t, err)

	ok, err := lr.Transition(ctx, tr)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lr.Transition(ctx, tr)
	require.NoError(t, err)
	assert.False(t, ok, "second transition from a stale status must not match")

	_, err = lr.FindOpenByOrderCode(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := lr.GetByOrderCode(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, got.Status)
}

func TestCreate_UniqueOrderCodeAndBonusSource(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	d := seedDeposit(t, uow, 3, 100)
	lr, _ := uow.LedgerRepository()

	dup, err := ledger.NewDeposit(uuid.New(), 5, ledger.Correlation{OrderCode: 3}, "", now)
	require.NoError(t, err)
	assert.ErrorIs(t, lr.Create(ctx, dup), domain.ErrPersistenceConflict)

	promo := uuid.New()
	require.NoError(t, lr.Create(ctx, ledger.NewBonus(d, promo, 10, now)))
	assert.ErrorIs(t, lr.Create(ctx, ledger.NewBonus(d, promo, 10, now)), domain.ErrPersistenceConflict)

	bonus, err := lr.GetBonusForDeposit(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bonus.Amount)
}

func TestClaimBonusEvaluation_Once(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	d := seedDeposit(t, uow, 4, 100)
	lr, _ := uow.LedgerRepository()

	ok, err := lr.ClaimBonusEvaluation(ctx, d.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = lr.ClaimBonusEvaluation(ctx, d.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIncrementUses_ConcurrentLastUse(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	pr, _ := uow.PromotionRepository()
	max := 1
	p := &promotion.Promotion{
		ID:      uuid.New(),
		Title:   "last one",
		Kind:    promotion.KindTimeBased,
		Bonus:   promotion.Flat{Amount: 1},
		MaxUses: &max,
		Window:  promotion.Window{Start: now},
		Active:  true,
	}
	require.NoError(t, pr.Create(ctx, p))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := pr.IncrementUses(ctx, p.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	got, err := pr.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentUses)

	require.NoError(t, pr.ReleaseUse(ctx, p.ID))
	got, _ = pr.Get(ctx, p.ID)
	assert.Zero(t, got.CurrentUses)
}

func TestRedeemCode(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	pr, _ := uow.PromotionRepository()
	p := &promotion.Promotion{
		ID:     uuid.New(),
		Title:  "welcome",
		Kind:   promotion.KindCodeBased,
		Bonus:  promotion.Flat{Amount: 1},
		Window: promotion.Window{Start: now},
		Active: true,
	}
	require.NoError(t, pr.Create(ctx, p))
	require.NoError(t, pr.CreateCode(ctx, &promotion.Code{Code: "welcome100", PromotionID: p.ID}))
	assert.ErrorIs(t, pr.CreateCode(ctx, &promotion.Code{Code: "WELCOME100", PromotionID: p.ID}), domain.ErrPersistenceConflict)

	user := uuid.New()
	ok, err := pr.RedeemCode(ctx, "WELCOME100", user, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = pr.RedeemCode(ctx, "welcome100", uuid.New(), now)
	require.NoError(t, err)
	assert.False(t, ok)

	code, err := pr.GetCode(ctx, "Welcome100")
	require.NoError(t, err)
	assert.True(t, code.Used)
	assert.Equal(t, user, *code.UsedBy)

	_, err = pr.GetCode(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	d := seedDeposit(t, uow, 5, 100)
	lr, _ := uow.LedgerRepository()

	got, err := lr.Get(ctx, d.ID)
	require.NoError(t, err)
	got.Status = ledger.StatusApproved

	again, err := lr.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusAwaitingPayment, again.Status)
}

func TestGetRepository(t *testing.T) {
	uow := NewUoW(NewStore())
	repo, err := uow.GetRepository(repository.LedgerRepositoryType)
	require.NoError(t, err)
	assert.Implements(t, (*repository.LedgerRepository)(nil), repo)
	_, err = uow.GetRepository(nil)
	assert.Error(t, err)
}
