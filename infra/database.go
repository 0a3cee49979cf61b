package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamewallet/wallet/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// NewDBConnection opens the ledger database and checks it is reachable.
// Unique violations surface as gorm.ErrDuplicatedKey.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cnf.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cnf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cnf.MaxOpenConns)
	}
	if cnf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cnf.MaxIdleConns)
	}
	if cnf.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cnf.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping ledger database: %w", err)
	}
	return db, nil
}
