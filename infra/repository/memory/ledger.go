package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/google/uuid"
)

type ledgerRepository struct {
	uow *UoW
}

func (r *ledgerRepository) Create(_ context.Context, e *ledger.Entry) error {
	return r.uow.run(func(s *state) error {
		if _, ok := s.entries[e.ID]; ok {
			return fmt.Errorf("%w: ledger entry %s exists", domain.ErrPersistenceConflict, e.ID)
		}
		for _, id := range s.order {
			other := s.entries[id]
			if e.Kind == ledger.KindDeposit && other.Kind == ledger.KindDeposit &&
				e.Correlation.OrderCode != 0 && other.Correlation.OrderCode == e.Correlation.OrderCode {
				return fmt.Errorf("%w: order code %d exists", domain.ErrPersistenceConflict, e.Correlation.OrderCode)
			}
			if e.SourceEntryID != nil && other.SourceEntryID != nil && *other.SourceEntryID == *e.SourceEntryID {
				return fmt.Errorf("%w: bonus for deposit %s exists", domain.ErrPersistenceConflict, *e.SourceEntryID)
			}
		}
		s.entries[e.ID] = cloneEntry(e)
		s.order = append(s.order, e.ID)
		return nil
	})
}

func (r *ledgerRepository) Get(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var out *ledger.Entry
	err := r.uow.run(func(s *state) error {
		e, ok := s.entries[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = cloneEntry(e)
		return nil
	})
	return out, err
}

func (r *ledgerRepository) find(orderCode int64, open bool) (*ledger.Entry, error) {
	var out *ledger.Entry
	err := r.uow.run(func(s *state) error {
		for _, id := range s.order {
			e := s.entries[id]
			if e.Kind != ledger.KindDeposit || e.Correlation.OrderCode != orderCode {
				continue
			}
			if open && !e.IsOpen() {
				continue
			}
			out = cloneEntry(e)
			return nil
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *ledgerRepository) GetByOrderCode(_ context.Context, orderCode int64) (*ledger.Entry, error) {
	return r.find(orderCode, false)
}

func (r *ledgerRepository) FindOpenByOrderCode(_ context.Context, orderCode int64) (*ledger.Entry, error) {
	return r.find(orderCode, true)
}

func (r *ledgerRepository) Transition(_ context.Context, t ledger.Transition) (bool, error) {
	var applied bool
	err := r.uow.run(func(s *state) error {
		e, ok := s.entries[t.EntryID]
		if !ok || !slices.Contains(t.From, e.Status) {
			return nil
		}
		e.Apply(t)
		applied = true
		return nil
	})
	return applied, err
}

func (r *ledgerRepository) HasApprovedDeposit(_ context.Context, userID, exclude uuid.UUID) (bool, error) {
	var found bool
	err := r.uow.run(func(s *state) error {
		for _, e := range s.entries {
			if e.UserID == userID && e.ID != exclude &&
				e.Kind == ledger.KindDeposit && e.Status == ledger.StatusApproved {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *ledgerRepository) GetBonusForDeposit(_ context.Context, depositID uuid.UUID) (*ledger.Entry, error) {
	var out *ledger.Entry
	err := r.uow.run(func(s *state) error {
		for _, e := range s.entries {
			if e.Kind == ledger.KindBonus && e.SourceEntryID != nil && *e.SourceEntryID == depositID {
				out = cloneEntry(e)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *ledgerRepository) ClaimBonusEvaluation(_ context.Context, depositID uuid.UUID, at time.Time) (bool, error) {
	var claimed bool
	err := r.uow.run(func(s *state) error {
		e, ok := s.entries[depositID]
		if !ok || e.BonusEvaluatedAt != nil {
			return nil
		}
		stamp := at
		e.BonusEvaluatedAt = &stamp
		e.UpdatedAt = at
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *ledgerRepository) ListApproved(_ context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	err := r.uow.run(func(s *state) error {
		for _, id := range s.order {
			e := s.entries[id]
			if e.UserID == userID && e.Status == ledger.StatusApproved {
				out = append(out, cloneEntry(e))
			}
		}
		return nil
	})
	return out, err
}
