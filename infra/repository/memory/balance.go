package memory

import (
	"context"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/google/uuid"
)

type balanceRepository struct {
	uow *UoW
}

func (r *balanceRepository) Get(_ context.Context, userID uuid.UUID) (*ledger.Balance, error) {
	out := &ledger.Balance{UserID: userID}
	err := r.uow.run(func(s *state) error {
		if b, ok := s.balances[userID]; ok {
			*out = *b
		}
		return nil
	})
	return out, err
}

func (r *balanceRepository) Credit(_ context.Context, userID uuid.UUID, delta int64, at time.Time) error {
	return r.uow.run(func(s *state) error {
		b, ok := s.balances[userID]
		if !ok {
			b = &ledger.Balance{UserID: userID}
			s.balances[userID] = b
		}
		b.Amount += delta
		b.UpdatedAt = at
		return nil
	})
}

// Lock is satisfied by the store mutex every unit of work already holds.
func (r *balanceRepository) Lock(_ context.Context, userID uuid.UUID, at time.Time) error {
	return r.uow.run(func(s *state) error {
		if _, ok := s.balances[userID]; !ok {
			s.balances[userID] = &ledger.Balance{UserID: userID, UpdatedAt: at}
		}
		return nil
	})
}
