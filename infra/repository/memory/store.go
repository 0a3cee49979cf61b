// Package memory provides an in-process UnitOfWork with the same conditional-update
// semantics as the gorm repositories.
//
// Do serializes transactions behind one lock and works on a copy of the state that
// replaces the committed state only when fn succeeds.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
)

type state struct {
	entries    map[uuid.UUID]*ledger.Entry
	order      []uuid.UUID
	balances   map[uuid.UUID]*ledger.Balance
	promotions map[uuid.UUID]*promotion.Promotion
	codes      map[string]*promotion.Code
}

func newState() *state {
	return &state{
		entries:    make(map[uuid.UUID]*ledger.Entry),
		balances:   make(map[uuid.UUID]*ledger.Balance),
		promotions: make(map[uuid.UUID]*promotion.Promotion),
		codes:      make(map[string]*promotion.Code),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, e := range s.entries {
		c.entries[id] = cloneEntry(e)
	}
	c.order = append(c.order, s.order...)
	for id, b := range s.balances {
		cp := *b
		c.balances[id] = &cp
	}
	for id, p := range s.promotions {
		c.promotions[id] = clonePromotion(p)
	}
	for k, code := range s.codes {
		c.codes[k] = cloneCode(code)
	}
	return c
}

// Store is the shared in-memory database.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// UoW is a UnitOfWork over a Store. Outside Do every repository call locks the
// store on its own; inside Do the lock is already held.
type UoW struct {
	store *Store
	tx    *state
}

// NewUoW creates a UnitOfWork over store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn against a private copy of the state and commits it if fn succeeds.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	tx := u.store.state.clone()
	if err := fn(&UoW{store: u.store, tx: tx}); err != nil {
		return err
	}
	u.store.state = tx
	return nil
}

// run executes op against the transaction state, or against the committed state under the lock.
func (u *UoW) run(op func(s *state) error) error {
	if u.tx != nil {
		return op(u.tx)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return op(u.store.state)
}

// GetRepository implements repository.UnitOfWork.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case repository.LedgerRepositoryType:
		return &ledgerRepository{uow: u}, nil
	case repository.BalanceRepositoryType:
		return &balanceRepository{uow: u}, nil
	case repository.PromotionRepositoryType:
		return &promotionRepository{uow: u}, nil
	default:
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
}

func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	return &ledgerRepository{uow: u}, nil
}

func (u *UoW) BalanceRepository() (repository.BalanceRepository, error) {
	return &balanceRepository{uow: u}, nil
}

func (u *UoW) PromotionRepository() (repository.PromotionRepository, error) {
	return &promotionRepository{uow: u}, nil
}

func cloneEntry(e *ledger.Entry) *ledger.Entry {
	c := *e
	c.SourceEntryID = clonePtr(e.SourceEntryID)
	c.PromotionID = clonePtr(e.PromotionID)
	c.FirstDeposit = clonePtr(e.FirstDeposit)
	c.BonusEvaluatedAt = clonePtr(e.BonusEvaluatedAt)
	c.ApprovedBy = clonePtr(e.ApprovedBy)
	c.ApprovedAt = clonePtr(e.ApprovedAt)
	return &c
}

func clonePromotion(p *promotion.Promotion) *promotion.Promotion {
	c := *p
	c.MinDeposit = clonePtr(p.MinDeposit)
	c.MaxUses = clonePtr(p.MaxUses)
	c.Window.End = clonePtr(p.Window.End)
	return &c
}

func cloneCode(code *promotion.Code) *promotion.Code {
	c := *code
	c.UsedBy = clonePtr(code.UsedBy)
	c.UsedAt = clonePtr(code.UsedAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
