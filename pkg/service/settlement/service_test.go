package settlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gamewallet/wallet/infra/eventbus"
	"github.com/gamewallet/wallet/infra/repository/memory"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/gamewallet/wallet/pkg/service/deposit"
	promosvc "github.com/gamewallet/wallet/pkg/service/promotion"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	deps       config.Deps
	uow        *memory.UoW
	bus        *eventbus.MemoryEventBus
	deposits   *deposit.Service
	promotions *promosvc.Service
	svc        *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen, err := ordercode.NewGenerator(1)
	require.NoError(t, err)
	uow := memory.NewUoW(memory.NewStore())
	bus := eventbus.NewWithMemory(logger)
	deps := config.Deps{
		Uow:        uow,
		OrderCodes: gen,
		EventBus:   bus,
		Metrics:    metrics.MustNew(prometheus.NewRegistry()),
		Logger:     logger,
		Config: &config.App{Deposit: &config.Deposit{
			MinAmount:         10000,
			MaxAmount:         500000000,
			DescriptionPrefix: "NAP",
			Method:            "payment_link",
		}},
	}
	promotions := promosvc.NewService(deps)
	return &fixture{
		deps:       deps,
		uow:        uow,
		bus:        bus,
		deposits:   deposit.NewService(deps),
		promotions: promotions,
		svc:        NewService(deps, promotions),
	}
}

func (f *fixture) open(t *testing.T, userID uuid.UUID, amount int64, code string) *ledger.Entry {
	t.Helper()
	e, err := f.deposits.CreateDepositOrder(context.Background(), userID, amount, code)
	require.NoError(t, err)
	return e
}

func (f *fixture) createPromotion(t *testing.T, p *promotion.Promotion) *promotion.Promotion {
	t.Helper()
	p.Active = true
	if p.Window.Start.IsZero() {
		p.Window.Start = time.Now().Add(-time.Hour)
	}
	out, err := f.promotions.CreatePromotion(context.Background(), p)
	require.NoError(t, err)
	return out
}

func (f *fixture) balance(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	b, err := f.deposits.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b.Amount
}

func (f *fixture) entry(t *testing.T, id uuid.UUID) *ledger.Entry {
	t.Helper()
	repo, err := f.uow.LedgerRepository()
	require.NoError(t, err)
	e, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	return e
}

func (f *fixture) published(eventType events.EventType) int {
	n := 0
	for _, e := range f.bus.Published() {
		if e.Type() == eventType.String() {
			n++
		}
	}
	return n
}

func success(e *ledger.Entry) payment.Event {
	return payment.Event{OrderCode: e.Correlation.OrderCode, Amount: e.Amount, StatusCode: payment.SuccessCode}
}

func percent(t *testing.T, rate int64) promotion.Bonus {
	t.Helper()
	b, err := promotion.NewPercentage(decimal.NewFromInt(rate))
	require.NoError(t, err)
	return b
}

func intPtr(v int) *int { return &v }

func TestSettle_ApprovesAndCredits(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	e := f.open(t, user, 50000, "")

	res, err := f.svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeApproved, res.Outcome)
	assert.Equal(t, ledger.StatusApproved, res.Status)
	assert.False(t, res.Duplicate)
	assert.False(t, res.Bonus.Applied())
	assert.Equal(t, int64(50000), f.balance(t, user))

	stored := f.entry(t, e.ID)
	assert.Equal(t, ledger.StatusApproved, stored.Status)
	require.NotNil(t, stored.FirstDeposit)
	assert.True(t, *stored.FirstDeposit)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, ledger.ActorSettlement, *stored.ApprovedBy)
	assert.NotNil(t, stored.BonusEvaluatedAt)
	assert.Equal(t, 1, f.published(events.EventTypeDepositApproved))
}

func TestSettle_Welcome100(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	minDeposit := int64(50000)
	p := f.createPromotion(t, &promotion.Promotion{
		Title:      "Welcome 100%",
		Kind:       promotion.KindCodeBased,
		Bonus:      percent(t, 100),
		MinDeposit: &minDeposit,
		MaxUses:    intPtr(1),
	})
	_, err := f.promotions.CreateCode(ctx, p.ID, "welcome100")
	require.NoError(t, err)

	e := f.open(t, user, 100000, "Welcome100")
	assert.Equal(t, "WELCOME100", e.Correlation.PromoCode)

	res, err := f.svc.Settle(ctx, success(e))
	require.NoError(t, err)
	require.True(t, res.Bonus.Applied())
	assert.Equal(t, int64(100000), res.Bonus.Entry.Amount)
	assert.Equal(t, promotion.RuleCode, res.Bonus.Rule)
	assert.Equal(t, int64(200000), f.balance(t, user))

	repo, err := f.uow.PromotionRepository()
	require.NoError(t, err)
	stored, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentUses)
	assert.True(t, stored.Exhausted())
	code, err := repo.GetCode(ctx, "WELCOME100")
	require.NoError(t, err)
	assert.True(t, code.Used)
	require.NotNil(t, code.UsedBy)
	assert.Equal(t, user, *code.UsedBy)
	assert.Equal(t, 1, f.published(events.EventTypeBonusApplied))

	status, err := f.deposits.GetDeposit(ctx, user, e.ID)
	require.NoError(t, err)
	require.NotNil(t, status.Bonus)
	assert.Equal(t, e.ID, *status.Bonus.SourceEntryID)
}

func TestSettle_CodeBelowMinimumDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	minDeposit := int64(50000)
	p := f.createPromotion(t, &promotion.Promotion{
		Title:      "Welcome 100%",
		Kind:       promotion.KindCodeBased,
		Bonus:      percent(t, 100),
		MinDeposit: &minDeposit,
	})
	_, err := f.promotions.CreateCode(ctx, p.ID, "WELCOME100")
	require.NoError(t, err)

	res, err := f.svc.Settle(ctx, success(f.open(t, user, 49999, "WELCOME100")))
	require.NoError(t, err)
	assert.False(t, res.Bonus.Applied())
	assert.Equal(t, int64(49999), f.balance(t, user))

	repo, err := f.uow.PromotionRepository()
	require.NoError(t, err)
	code, err := repo.GetCode(ctx, "WELCOME100")
	require.NoError(t, err)
	assert.False(t, code.Used)
}

func TestSettle_DuplicateIsNoop(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	f.createPromotion(t, &promotion.Promotion{
		Title: "First deposit",
		Kind:  promotion.KindFirstDeposit,
		Bonus: percent(t, 50),
	})
	e := f.open(t, user, 100000, "")

	_, err := f.svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	require.Equal(t, int64(150000), f.balance(t, user))

	res, err := f.svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, metrics.OutcomeDuplicate, res.Outcome)
	assert.Equal(t, ledger.StatusApproved, res.Status)
	assert.Equal(t, int64(150000), f.balance(t, user))
	assert.Equal(t, 1, f.published(events.EventTypeDepositApproved))
	assert.Equal(t, 1, f.published(events.EventTypeBonusApplied))
}

func TestSettle_ConcurrentDuplicatesCreditOnce(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	f.createPromotion(t, &promotion.Promotion{
		Title: "First deposit",
		Kind:  promotion.KindFirstDeposit,
		Bonus: percent(t, 10),
	})
	e := f.open(t, user, 100000, "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Settle(context.Background(), success(e))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(110000), f.balance(t, user))
	assert.Equal(t, 1, f.published(events.EventTypeDepositApproved))
	assert.Equal(t, 1, f.published(events.EventTypeBonusApplied))
}

func TestSettle_AmountMismatchLeavesEntryOpen(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	e := f.open(t, user, 100000, "")

	evt := success(e)
	evt.Amount = 99999
	res, err := f.svc.Settle(context.Background(), evt)
	require.ErrorIs(t, err, domain.ErrAmountMismatch)
	assert.Nil(t, res)
	assert.Equal(t, ledger.StatusAwaitingPayment, f.entry(t, e.ID).Status)
	assert.Equal(t, int64(0), f.balance(t, user))
	assert.Equal(t, 1, f.published(events.EventTypeSettlementAnomaly))

	// The correct confirmation still settles the entry.
	_, err = f.svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	assert.Equal(t, int64(100000), f.balance(t, user))
}

func TestSettle_RejectedThenSuccessIsIgnored(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	e := f.open(t, user, 100000, "")

	failed := success(e)
	failed.StatusCode = "01"
	res, err := f.svc.Settle(context.Background(), failed)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeRejected, res.Outcome)
	assert.Equal(t, ledger.StatusRejected, res.Status)
	assert.Nil(t, res.Bonus)

	res, err = f.svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, ledger.StatusRejected, res.Status)
	assert.Equal(t, int64(0), f.balance(t, user))
	assert.Nil(t, f.entry(t, e.ID).BonusEvaluatedAt)
	assert.Equal(t, 1, f.published(events.EventTypeDepositRejected))
}

func TestSettle_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Settle(context.Background(), payment.Event{OrderCode: 42, Amount: 10000, StatusCode: payment.SuccessCode})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeUnknownOrder, res.Outcome)
	assert.Empty(t, res.Status)
	assert.Equal(t, 1, f.published(events.EventTypeSettlementAnomaly))
}

func TestSettle_RejectsNonPositiveOrderCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Settle(context.Background(), payment.Event{OrderCode: 0, Amount: 10000})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type failingApplier struct{}

func (failingApplier) Apply(context.Context, *ledger.Entry) (*promosvc.Result, error) {
	return nil, errors.New("promotion storage unavailable")
}

func TestSettle_ReplayResumesBonusEvaluation(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	f.createPromotion(t, &promotion.Promotion{
		Title: "First deposit",
		Kind:  promotion.KindFirstDeposit,
		Bonus: percent(t, 20),
	})
	e := f.open(t, user, 100000, "")

	broken := NewService(f.deps, failingApplier{})
	res, err := broken.Settle(context.Background(), success(e))
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ledger.StatusApproved, res.Status)
	assert.Equal(t, int64(100000), f.balance(t, user))
	assert.True(t, f.entry(t, e.ID).NeedsBonusEvaluation())

	res, err = f.svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	require.True(t, res.Bonus.Applied())
	assert.Equal(t, int64(120000), f.balance(t, user))
}

func TestSettle_SecondDepositIsNotFirst(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	f.createPromotion(t, &promotion.Promotion{
		Title: "First deposit",
		Kind:  promotion.KindFirstDeposit,
		Bonus: percent(t, 100),
	})

	first := f.open(t, user, 100000, "")
	_, err := f.svc.Settle(context.Background(), success(first))
	require.NoError(t, err)

	second := f.open(t, user, 100000, "")
	res, err := f.svc.Settle(context.Background(), success(second))
	require.NoError(t, err)
	assert.False(t, res.Bonus.Applied())
	require.NotNil(t, res.Entry.FirstDeposit)
	assert.False(t, *res.Entry.FirstDeposit)
	assert.Equal(t, int64(300000), f.balance(t, user))
}

func TestSettle_ExhaustedPromotionStopsPaying(t *testing.T) {
	f := newFixture(t)
	p := f.createPromotion(t, &promotion.Promotion{
		Title:   "Happy hour",
		Kind:    promotion.KindTimeBased,
		Bonus:   promotion.Flat{Amount: 5000},
		MaxUses: intPtr(1),
	})

	alice, bob := uuid.New(), uuid.New()
	res, err := f.svc.Settle(context.Background(), success(f.open(t, alice, 20000, "")))
	require.NoError(t, err)
	require.True(t, res.Bonus.Applied())
	assert.Equal(t, p.ID, *res.Bonus.Entry.PromotionID)

	res, err = f.svc.Settle(context.Background(), success(f.open(t, bob, 20000, "")))
	require.NoError(t, err)
	assert.False(t, res.Bonus.Applied())
	assert.Equal(t, int64(25000), f.balance(t, alice))
	assert.Equal(t, int64(20000), f.balance(t, bob))
}

func TestSettle_AtMostOneBonusPerDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	code := f.createPromotion(t, &promotion.Promotion{Title: "Code", Kind: promotion.KindCodeBased, Bonus: promotion.Flat{Amount: 1000}})
	_, err := f.promotions.CreateCode(ctx, code.ID, "STACK")
	require.NoError(t, err)
	f.createPromotion(t, &promotion.Promotion{Title: "First", Kind: promotion.KindFirstDeposit, Bonus: promotion.Flat{Amount: 2000}})
	f.createPromotion(t, &promotion.Promotion{Title: "Timed", Kind: promotion.KindTimeBased, Bonus: promotion.Flat{Amount: 3000}})

	e := f.open(t, user, 50000, "stack")
	res, err := f.svc.Settle(ctx, success(e))
	require.NoError(t, err)
	require.True(t, res.Bonus.Applied())
	assert.Equal(t, code.ID, *res.Bonus.Entry.PromotionID)
	assert.Equal(t, int64(51000), f.balance(t, user))

	repo, err := f.uow.LedgerRepository()
	require.NoError(t, err)
	approved, err := repo.ListApproved(ctx, user)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
}

var _ repository.UnitOfWork = (*memory.UoW)(nil)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingUoW struct {
	repository.UnitOfWork
	log *callLog
}

func (u recordingUoW) Do(ctx context.Context, fn func(repository.UnitOfWork) error) error {
	return u.UnitOfWork.Do(ctx, func(tx repository.UnitOfWork) error {
		return fn(recordingUoW{UnitOfWork: tx, log: u.log})
	})
}

func (u recordingUoW) LedgerRepository() (repository.LedgerRepository, error) {
	r, err := u.UnitOfWork.LedgerRepository()
	return recordingLedger{LedgerRepository: r, log: u.log}, err
}

func (u recordingUoW) BalanceRepository() (repository.BalanceRepository, error) {
	r, err := u.UnitOfWork.BalanceRepository()
	return recordingBalance{BalanceRepository: r, log: u.log}, err
}

type recordingLedger struct {
	repository.LedgerRepository
	log *callLog
}

func (r recordingLedger) HasApprovedDeposit(ctx context.Context, userID, exclude uuid.UUID) (bool, error) {
	r.log.add("has_approved_deposit")
	return r.LedgerRepository.HasApprovedDeposit(ctx, userID, exclude)
}

type recordingBalance struct {
	repository.BalanceRepository
	log *callLog
}

func (r recordingBalance) Lock(ctx context.Context, userID uuid.UUID, at time.Time) error {
	r.log.add("lock")
	return r.BalanceRepository.Lock(ctx, userID, at)
}

func TestSettle_LocksUserBeforeReadingDepositHistory(t *testing.T) {
	f := newFixture(t)
	log := &callLog{}
	deps := f.deps
	deps.Uow = recordingUoW{UnitOfWork: f.uow, log: log}
	svc := NewService(deps, f.promotions)

	user := uuid.New()
	e := f.open(t, user, 50000, "")
	_, err := svc.Settle(context.Background(), success(e))
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "has_approved_deposit"}, log.snapshot())

	rejected := f.open(t, user, 50000, "")
	_, err = svc.Settle(context.Background(), payment.Event{
		OrderCode:  rejected.Correlation.OrderCode,
		Amount:     rejected.Amount,
		StatusCode: "99",
	})
	require.NoError(t, err)
	assert.Len(t, log.snapshot(), 2, "rejection takes no lock")
}

func TestSettle_ConcurrentOrdersOfOneUserHaveOneFirstDeposit(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	a := f.open(t, user, 50000, "")
	b := f.open(t, user, 60000, "")

	var wg sync.WaitGroup
	for _, e := range []*ledger.Entry{a, b} {
		wg.Add(1)
		go func(e *ledger.Entry) {
			defer wg.Done()
			_, err := f.svc.Settle(context.Background(), success(e))
			assert.NoError(t, err)
		}(e)
	}
	wg.Wait()

	firsts := 0
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		stored := f.entry(t, id)
		require.NotNil(t, stored.FirstDeposit)
		if *stored.FirstDeposit {
			firsts++
		}
	}
	assert.Equal(t, 1, firsts)
	assert.Equal(t, int64(110000), f.balance(t, user))
}

func TestSettle_InterimStatusLeavesDepositOpen(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	e := f.open(t, user, 50000, "")

	res, err := f.svc.Settle(context.Background(), payment.Event{
		OrderCode:  e.Correlation.OrderCode,
		Amount:     e.Amount,
		StatusCode: "PENDING",
	})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeUnsettled, res.Outcome)
	assert.Equal(t, ledger.StatusAwaitingPayment, res.Status)
	assert.True(t, f.entry(t, e.ID).IsOpen())
	assert.Zero(t, f.balance(t, user))
	assert.Equal(t, 1, f.published(events.EventTypeSettlementAnomaly))

	res, err = f.svc.Settle(context.Background(), payment.Event{
		OrderCode:  e.Correlation.OrderCode,
		Amount:     e.Amount,
		StatusCode: "PAID",
	})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeApproved, res.Outcome)
	assert.Equal(t, int64(50000), f.balance(t, user))
}
