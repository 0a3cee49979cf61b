// Command kafka_smoketest emits one settlement event through the Kafka event bus
// and waits for a registered handler to receive it.
//
//	BROKERS=localhost:9092 go run ./scripts/kafka_smoketest
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	infra_eventbus "github.com/gamewallet/wallet/infra/eventbus"
	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/google/uuid"
)

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RunSmokeTest round-trips a DepositApproved event through the configured cluster.
func RunSmokeTest(ctx context.Context, logger *slog.Logger) error {
	brokers := strings.Split(envOr("BROKERS", "localhost:9092"), ",")
	topic := envOr("TOPIC", "wallet.settlement.smoketest")
	group := envOr("GROUP_ID", "wallet-smoketest-"+uuid.NewString()[:8])

	bus, err := infra_eventbus.NewWithKafka(brokers, topic, group, events.Types, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	sent := events.NewDepositApproved(time.Now().UnixNano(), uuid.New(), uuid.New(), 100000, true, time.Now().UTC())
	received := make(chan *events.DepositApproved, 1)
	bus.Register(events.EventTypeDepositApproved.String(), func(_ context.Context, e events.Event) error {
		if approved, ok := e.(*events.DepositApproved); ok && approved.ID == sent.ID {
			select {
			case received <- approved:
			default:
			}
		}
		return nil
	})

	if err := bus.Emit(ctx, sent); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	logger.Info("produced", "topic", topic, "order_code", sent.OrderCode)

	select {
	case got := <-received:
		logger.Info("consumed", "topic", topic, "order_code", got.OrderCode, "amount", got.Amount)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("no event consumed from %s: %w", topic, ctx.Err())
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	err := RunSmokeTest(ctx, logger)
	cancel()
	if err != nil {
		logger.Error("kafka smoke test failed", "error", err)
		os.Exit(1)
	}
	logger.Info("kafka smoke test passed")
}
