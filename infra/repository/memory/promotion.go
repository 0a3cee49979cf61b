package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/google/uuid"
)

type promotionRepository struct {
	uow *UoW
}

func (r *promotionRepository) Create(_ context.Context, p *promotion.Promotion) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.uow.run(func(s *state) error {
		if _, ok := s.promotions[p.ID]; ok {
			return fmt.Errorf("%w: promotion %s exists", domain.ErrPersistenceConflict, p.ID)
		}
		s.promotions[p.ID] = clonePromotion(p)
		return nil
	})
}

func (r *promotionRepository) Get(_ context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var out *promotion.Promotion
	err := r.uow.run(func(s *state) error {
		p, ok := s.promotions[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = clonePromotion(p)
		return nil
	})
	return out, err
}

func (r *promotionRepository) List(_ context.Context) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	err := r.uow.run(func(s *state) error {
		for _, p := range s.promotions {
			out = append(out, clonePromotion(p))
		}
		return nil
	})
	promotion.SortByRecency(out)
	return out, err
}

func (r *promotionRepository) ListCampaigns(_ context.Context) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	err := r.uow.run(func(s *state) error {
		for _, p := range s.promotions {
			if p.Active && (p.Kind == promotion.KindFirstDeposit || p.Kind == promotion.KindTimeBased) {
				out = append(out, clonePromotion(p))
			}
		}
		return nil
	})
	promotion.SortByRecency(out)
	return out, err
}

func (r *promotionRepository) IncrementUses(_ context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.uow.run(func(s *state) error {
		p, found := s.promotions[id]
		if !found || p.Exhausted() {
			return nil
		}
		p.CurrentUses++
		ok = true
		return nil
	})
	return ok, err
}

func (r *promotionRepository) ReleaseUse(_ context.Context, id uuid.UUID) error {
	return r.uow.run(func(s *state) error {
		if p, ok := s.promotions[id]; ok && p.CurrentUses > 0 {
			p.CurrentUses--
		}
		return nil
	})
}

func (r *promotionRepository) CreateCode(_ context.Context, c *promotion.Code) error {
	key := strings.ToUpper(c.Code)
	return r.uow.run(func(s *state) error {
		if _, ok := s.promotions[c.PromotionID]; !ok {
			return fmt.Errorf("%w: promotion %s", domain.ErrNotFound, c.PromotionID)
		}
		if _, ok := s.codes[key]; ok {
			return fmt.Errorf("%w: promotion code %s exists", domain.ErrPersistenceConflict, key)
		}
		cp := cloneCode(c)
		cp.Code = key
		s.codes[key] = cp
		return nil
	})
}

func (r *promotionRepository) GetCode(_ context.Context, code string) (*promotion.Code, error) {
	var out *promotion.Code
	err := r.uow.run(func(s *state) error {
		c, ok := s.codes[strings.ToUpper(code)]
		if !ok {
			return domain.ErrNotFound
		}
		out = cloneCode(c)
		return nil
	})
	return out, err
}

func (r *promotionRepository) RedeemCode(_ context.Context, code string, userID uuid.UUID, at time.Time) (bool, error) {
	var ok bool
	err := r.uow.run(func(s *state) error {
		c, found := s.codes[strings.ToUpper(code)]
		if !found || c.Used {
			return nil
		}
		user := userID
		usedAt := at
		c.Used = true
		c.UsedBy = &user
		c.UsedAt = &usedAt
		ok = true
		return nil
	})
	return ok, err
}
