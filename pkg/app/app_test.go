package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gamewallet/wallet/infra/eventbus"
	"github.com/gamewallet/wallet/infra/repository/memory"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresServicesAndHandlers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen, err := ordercode.NewGenerator(3)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	a := New(&config.Deps{
		Uow:        memory.NewUoW(memory.NewStore()),
		OrderCodes: gen,
		EventBus:   eventbus.NewWithMemory(logger),
		Metrics:    metrics.MustNew(reg),
		Logger:     logger,
		Config:     &config.App{Deposit: &config.Deposit{MinAmount: 1, MaxAmount: 1000000}},
	})
	require.NotNil(t, a.DepositService)
	require.NotNil(t, a.SettlementService)
	require.NotNil(t, a.PromotionService)
	require.NotNil(t, a.AuditService)

	ctx := context.Background()
	user := uuid.New()
	e, err := a.DepositService.CreateDepositOrder(ctx, user, 5000, "")
	require.NoError(t, err)
	_, err = a.SettlementService.Settle(ctx, payment.Event{
		OrderCode:  e.Correlation.OrderCode,
		Amount:     e.Amount,
		StatusCode: payment.SuccessCode,
	})
	require.NoError(t, err)

	// An unknown order reaches the anomaly handler through the bus.
	_, err = a.SettlementService.Settle(ctx, payment.Event{OrderCode: 1, Amount: 5000, StatusCode: payment.SuccessCode})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "wallet_settlement_anomalies_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	report, err := a.AuditService.Audit(ctx, user)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, int64(5000), report.Materialized)
}
