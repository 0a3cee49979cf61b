package initializer

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gamewallet/wallet/infra"
	infra_eventbus "github.com/gamewallet/wallet/infra/eventbus"
	"github.com/gamewallet/wallet/infra/provider/banktransfer"
	"github.com/gamewallet/wallet/infra/provider/payos"
	infra_repository "github.com/gamewallet/wallet/infra/repository"
	"github.com/gamewallet/wallet/infra/repository/memory"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// InitializeDependencies builds every infrastructure dependency the app needs.
// Metrics are registered on reg; pass prometheus.DefaultRegisterer in production.
func InitializeDependencies(cfg *config.App, reg prometheus.Registerer) (
	deps *config.Deps,
	err error,
) {
	logger := setupLogger(cfg.Log)
	deps = &config.Deps{Config: cfg, Logger: logger}

	deps.Uow, err = initUnitOfWork(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps.EventBus, err = initEventBus(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	deps.OrderCodes, err = ordercode.NewGenerator(cfg.Deposit.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize order code generator: %w", err)
	}

	if payOS := cfg.PaymentProviders.PayOS; payOS.Configured() {
		deps.PaymentProvider = payos.New(payOS, &http.Client{Timeout: payOS.HTTPTimeout}, logger)
	} else {
		logger.Warn("payOS credentials missing; deposits fall back to bank transfer")
	}
	if cfg.BankTransfer.Configured() {
		deps.BankTransfer = banktransfer.New(cfg.BankTransfer)
	} else {
		logger.Warn("bank transfer receiver not configured; no static QR fallback")
	}

	deps.Metrics = metrics.MustNew(reg)
	return deps, nil
}

// initUnitOfWork opens postgres when a URL is configured and otherwise uses the in-process store.
func initUnitOfWork(cfg *config.App, logger *slog.Logger) (repository.UnitOfWork, error) {
	if cfg.DB == nil || cfg.DB.Url == "" {
		logger.Warn("DATABASE_URL is empty; using the in-memory store")
		return memory.NewUoW(memory.NewStore()), nil
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	return infra_repository.NewUoW(db), nil
}

func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	ebCfg := cfg.EventBus
	if ebCfg == nil {
		ebCfg = &config.EventBus{Driver: "memory"}
	}

	switch ebCfg.Driver {
	case "", "memory":
		return infra_eventbus.NewWithMemory(logger), nil
	case "redis":
		if ebCfg.RedisURL == "" {
			return nil, fmt.Errorf("redis event bus selected but EVENT_BUS_REDIS_URL is empty")
		}
		bus, err := infra_eventbus.NewWithRedis(ebCfg.RedisURL, ebCfg.Stream, ebCfg.Group, events.Types, logger)
		if err != nil {
			logger.Warn("Redis event bus unavailable; falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	case "kafka":
		if len(ebCfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka event bus selected but EVENT_BUS_KAFKA_BROKERS is empty")
		}
		bus, err := infra_eventbus.NewWithKafka(
			ebCfg.KafkaBrokers, ebCfg.KafkaTopic, ebCfg.Group, events.Types, logger,
			infra_eventbus.WithSASLPlain(ebCfg.KafkaSASLUsername, ebCfg.KafkaSASLPassword),
		)
		if err != nil {
			logger.Warn("Kafka event bus unavailable; falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver %q", ebCfg.Driver)
	}
}
