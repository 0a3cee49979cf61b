package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/gamewallet/wallet/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.LedgerRepositoryType:    func(db *gorm.DB) any { return NewLedgerRepository(db) },
			repository.BalanceRepositoryType:   func(db *gorm.DB) any { return NewBalanceRepository(db) },
			repository.PromotionRepositoryType: func(db *gorm.DB) any { return NewPromotionRepository(db) },
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// GetRepository returns a repository bound to the current transaction, or to the
// plain connection outside Do.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	repoAny, err := u.GetRepository(repository.LedgerRepositoryType)
	if err != nil {
		return nil, err
	}
	return repoAny.(repository.LedgerRepository), nil
}

func (u *UoW) BalanceRepository() (repository.BalanceRepository, error) {
	repoAny, err := u.GetRepository(repository.BalanceRepositoryType)
	if err != nil {
		return nil, err
	}
	return repoAny.(repository.BalanceRepository), nil
}

func (u *UoW) PromotionRepository() (repository.PromotionRepository, error) {
	repoAny, err := u.GetRepository(repository.PromotionRepositoryType)
	if err != nil {
		return nil, err
	}
	return repoAny.(repository.PromotionRepository), nil
}
