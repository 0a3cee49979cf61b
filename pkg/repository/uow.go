package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn inside one storage transaction; every repository obtained from the
// UnitOfWork passed to fn shares that transaction. If fn returns an error the
// transaction is rolled back and none of its writes are visible.
//
// Repositories obtained outside Do run each call in its own implicit transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested type, bound to the current transaction/session.
	// Example:
	//   repoAny, err := uow.GetRepository(reflect.TypeOf((*LedgerRepository)(nil)).Elem())
	//   repo := repoAny.(LedgerRepository)
	GetRepository(repoType reflect.Type) (any, error)

	LedgerRepository() (LedgerRepository, error)
	BalanceRepository() (BalanceRepository, error)
	PromotionRepository() (PromotionRepository, error)
}

var (
	LedgerRepositoryType    = reflect.TypeOf((*LedgerRepository)(nil)).Elem()
	BalanceRepositoryType   = reflect.TypeOf((*BalanceRepository)(nil)).Elem()
	PromotionRepositoryType = reflect.TypeOf((*PromotionRepository)(nil)).Elem()
)
