//go:build integration

package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisBus(tb testing.TB) *RedisEventBus {
	tb.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0.5",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(tb, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(tb, err)

	bus, err := NewWithRedis("redis://"+host+":"+port.Port(), "wallet:test", "wallet", events.Types, slog.Default())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestRedisBusHandlerReceivesEvent(t *testing.T) {
	bus := setupRedisBus(t)

	received := make(chan *events.DepositApproved, 1)
	bus.Register(events.EventTypeDepositApproved.String(), func(_ context.Context, e events.Event) error {
		received <- e.(*events.DepositApproved)
		return nil
	})

	entry := uuid.New()
	require.NoError(t, bus.Emit(context.Background(),
		events.NewDepositApproved(42, uuid.New(), entry, 100000, true, time.Now().UTC())))

	select {
	case got := <-received:
		require.Equal(t, entry, got.EntryID)
		require.Equal(t, int64(42), got.OrderCode)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
