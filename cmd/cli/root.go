package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/gamewallet/wallet/infra"
	"github.com/gamewallet/wallet/infra/initializer"
	"github.com/gamewallet/wallet/pkg/app"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is how commands reach configuration and infrastructure; tests swap it out.
type env struct {
	envFile string

	loadConfig func(envFile string) (*config.App, error)
	buildApp   func(cfg *config.App) (*app.App, error)
	openDB     func(cfg *config.App) (*gorm.DB, error)

	cfg *config.App
	app *app.App
}

func defaultEnv() *env {
	return &env{
		loadConfig: func(envFile string) (*config.App, error) {
			return config.Load(envFile)
		},
		buildApp: func(cfg *config.App) (*app.App, error) {
			deps, err := initializer.InitializeDependencies(cfg, prometheus.NewRegistry())
			if err != nil {
				return nil, err
			}
			return app.New(deps), nil
		},
		openDB: func(cfg *config.App) (*gorm.DB, error) {
			return infra.NewDBConnection(cfg.DB, cfg.Env)
		},
	}
}

func (e *env) config() (*config.App, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := e.loadConfig(e.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	e.cfg = cfg
	return cfg, nil
}

func (e *env) wallet() (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	a, err := e.buildApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	e.app = a
	return a, nil
}

func (e *env) logger() *slog.Logger {
	if e.app != nil {
		return e.app.Deps.Logger
	}
	return slog.Default()
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7E57C2")).Width(18)
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

func printField(cmd *cobra.Command, label string, value any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", labelStyle.Render(label), value)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "wallet",
		Short:         "Operate the wallet settlement service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "Environment file to load")

	root.AddCommand(
		newMigrateCmd(e),
		newOrderCmd(e),
		newAuditCmd(e),
		newPromotionCmd(e),
		newCodeCmd(e),
		newTokenCmd(e),
	)
	return root
}
