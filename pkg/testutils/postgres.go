//go:build integration

// Package testutils starts real infrastructure for integration tests.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gamewallet/wallet/infra"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// StartPostgres runs a migrated Postgres container for the lifetime of t.
func StartPostgres(t testing.TB) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := startPostgresContainer(ctx)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDBConnection(&config.DB{Url: dsn}, "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, infra.Migrate(db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return db
}

func startPostgresContainer(ctx context.Context) (*tcpostgres.PostgresContainer, error) {
	return tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("wallet"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
}
