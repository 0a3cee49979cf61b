package repository

import (
	"context"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, e *ledger.Entry) error {
	m := fromEntry(e)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *ledgerRepository) Get(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var m LedgerEntry
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *ledgerRepository) byOrderCode(ctx context.Context, orderCode int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("order_code = ? AND kind = ?", orderCode, ledger.KindDeposit)
}

func (r *ledgerRepository) GetByOrderCode(ctx context.Context, orderCode int64) (*ledger.Entry, error) {
	var m LedgerEntry
	if err := WrapError(func() error {
		return r.byOrderCode(ctx, orderCode).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *ledgerRepository) FindOpenByOrderCode(ctx context.Context, orderCode int64) (*ledger.Entry, error) {
	var m LedgerEntry
	if err := WrapError(func() error {
		return r.byOrderCode(ctx, orderCode).
			Where("status IN ?", statusStrings(ledger.OpenStatuses)).
			First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

// Transition issues one UPDATE guarded by the expected prior statuses.
func (r *ledgerRepository) Transition(ctx context.Context, t ledger.Transition) (bool, error) {
	updates := map[string]any{
		"status":     string(t.To),
		"updated_at": t.At,
	}
	if t.To == ledger.StatusApproved {
		updates["approved_by"] = t.Actor
		updates["approved_at"] = t.At
	}
	if t.FirstDeposit != nil {
		updates["first_deposit"] = *t.FirstDeposit
	}
	result := r.db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Where("id = ? AND status IN ?", t.EntryID, statusStrings(t.From)).
		Updates(updates)
	if result.Error != nil {
		return false, MapGormErrorToDomain(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *ledgerRepository) HasApprovedDeposit(ctx context.Context, userID, exclude uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Where("user_id = ? AND kind = ? AND status = ? AND id <> ?",
			userID, ledger.KindDeposit, ledger.StatusApproved, exclude).
		Count(&count).Error
	if err != nil {
		return false, MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) GetBonusForDeposit(ctx context.Context, depositID uuid.UUID) (*ledger.Entry, error) {
	var m LedgerEntry
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("source_entry_id = ? AND kind = ?", depositID, ledger.KindBonus).
			First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *ledgerRepository) ClaimBonusEvaluation(ctx context.Context, depositID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Where("id = ? AND bonus_evaluated_at IS NULL", depositID).
		Updates(map[string]any{"bonus_evaluated_at": at, "updated_at": at})
	if result.Error != nil {
		return false, MapGormErrorToDomain(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *ledgerRepository) ListApproved(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	var rows []LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, ledger.StatusApproved).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*ledger.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func statusStrings(statuses []ledger.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
