package repository

import (
	"context"
	"strings"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type promotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) repository.PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m := fromPromotion(p)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *promotionRepository) Get(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var m Promotion
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (r *promotionRepository) list(q *gorm.DB) ([]*promotion.Promotion, error) {
	var rows []Promotion
	if err := q.Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*promotion.Promotion, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *promotionRepository) List(ctx context.Context) ([]*promotion.Promotion, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *promotionRepository) ListCampaigns(ctx context.Context) ([]*promotion.Promotion, error) {
	return r.list(r.db.WithContext(ctx).
		Where("is_active = ? AND kind IN ?", true,
			[]string{string(promotion.KindFirstDeposit), string(promotion.KindTimeBased)}))
}

// IncrementUses checks and increments in one UPDATE so two settlements cannot
// both take the last remaining use.
func (r *promotionRepository) IncrementUses(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Promotion{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", id).
		Updates(map[string]any{
			"current_uses": gorm.Expr("current_uses + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return false, MapGormErrorToDomain(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *promotionRepository) ReleaseUse(ctx context.Context, id uuid.UUID) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Model(&Promotion{}).
			Where("id = ? AND current_uses > 0", id).
			Updates(map[string]any{
				"current_uses": gorm.Expr("current_uses - 1"),
				"updated_at":   time.Now().UTC(),
			}).Error
	})
}

func (r *promotionRepository) CreateCode(ctx context.Context, c *promotion.Code) error {
	m := PromotionCode{
		Code:        strings.ToUpper(c.Code),
		PromotionID: c.PromotionID,
		IsUsed:      c.Used,
		UsedBy:      c.UsedBy,
		UsedAt:      c.UsedAt,
		CreatedAt:   time.Now().UTC(),
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *promotionRepository) GetCode(ctx context.Context, code string) (*promotion.Code, error) {
	var m PromotionCode
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *promotionRepository) RedeemCode(ctx context.Context, code string, userID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&PromotionCode{}).
		Where("code = ? AND is_used = ?", strings.ToUpper(code), false).
		Updates(map[string]any{"is_used": true, "used_by": userID, "used_at": at})
	if result.Error != nil {
		return false, MapGormErrorToDomain(result.Error)
	}
	return result.RowsAffected == 1, nil
}
