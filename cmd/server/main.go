package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/gamewallet/wallet/infra/initializer"
	"github.com/gamewallet/wallet/pkg/app"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// @title Wallet API
// @version 1.0.0
// @description Deposit settlement and promotion bonuses for the game wallet
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Enter your Bearer token in the format: Bearer {token}
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	fiberApp, deps, err := newServer(cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}
	logger := deps.Logger
	defer closeBus(deps, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- fiberApp.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return fiberApp.ShutdownWithContext(shutdownCtx)
	}
}

// newServer wires dependencies, services and routes without binding a port.
func newServer(
	cfg *config.App,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
) (*fiber.App, *config.Deps, error) {
	deps, err := initializer.InitializeDependencies(cfg, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return webapi.SetupApp(app.New(deps), gatherer), deps, nil
}

func closeBus(deps *config.Deps, logger *slog.Logger) {
	closer, ok := deps.EventBus.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Failed to close event bus", "error", err)
	}
}
