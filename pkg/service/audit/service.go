// Package audit reconstructs balances from the ledger and compares them with the
// materialized counters.
package audit

import (
	"context"
	"log/slog"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/google/uuid"
)

// Report compares one user's materialized balance with the sum of their approved entries.
type Report struct {
	UserID        uuid.UUID `json:"user_id"`
	Materialized  int64     `json:"materialized"`
	Reconstructed int64     `json:"reconstructed"`
	Entries       int       `json:"entries"`
	// ByKind is the signed total per entry kind.
	ByKind map[ledger.Kind]int64 `json:"by_kind"`
}

// Difference is Materialized minus Reconstructed.
func (r *Report) Difference() int64 {
	return r.Materialized - r.Reconstructed
}

// Consistent reports whether the counter matches the ledger.
func (r *Report) Consistent() bool {
	return r.Difference() == 0
}

// Service audits balances.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new audit Service.
func NewService(deps config.Deps) *Service {
	return &Service{uow: deps.Uow, logger: deps.Logger.With("service", "audit")}
}

// Audit reads the balance and the approved entries of userID in one unit of work.
func (s *Service) Audit(ctx context.Context, userID uuid.UUID) (*Report, error) {
	report := &Report{UserID: userID, ByKind: map[ledger.Kind]int64{}}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledgerRepo, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		balanceRepo, err := uow.BalanceRepository()
		if err != nil {
			return err
		}
		bal, err := balanceRepo.Get(ctx, userID)
		if err != nil {
			return err
		}
		entries, err := ledgerRepo.ListApproved(ctx, userID)
		if err != nil {
			return err
		}
		report.Materialized = bal.Amount
		for _, e := range entries {
			report.Reconstructed += e.Delta()
			report.ByKind[e.Kind] += e.Delta()
		}
		report.Entries = len(entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent() {
		s.logger.Warn("Balance drift detected",
			"user_id", userID,
			"materialized", report.Materialized,
			"reconstructed", report.Reconstructed,
		)
	}
	return report, nil
}
