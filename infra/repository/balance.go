package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type balanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) repository.BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) Get(ctx context.Context, userID uuid.UUID) (*ledger.Balance, error) {
	var m Balance
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	})
	if errors.Is(err, domain.ErrNotFound) {
		return &ledger.Balance{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger.Balance{UserID: m.UserID, Amount: m.Amount, UpdatedAt: m.UpdatedAt}, nil
}

// Credit inserts the row or adds delta to it server-side, never read-modify-write.
func (r *balanceRepository) Credit(ctx context.Context, userID uuid.UUID, delta int64, at time.Time) error {
	m := Balance{UserID: userID, Amount: delta, UpdatedAt: at}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"amount":     gorm.Expr("balances.amount + ?", delta),
				"updated_at": at,
			}),
		}).Create(&m).Error
	})
}

// Lock inserts a zero row when the user has none and takes a row lock with SELECT ... FOR UPDATE.
func (r *balanceRepository) Lock(ctx context.Context, userID uuid.UUID, at time.Time) error {
	seed := Balance{UserID: userID, UpdatedAt: at}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
	}); err != nil {
		return err
	}
	var locked Balance
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&locked).Error
	})
}
