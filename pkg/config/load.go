package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (or .env), then the process environment.
// Variables already set in the environment win over file values.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	if len(envFilePath) == 0 {
		envFilePath = []string{".env"}
	}

	loaded := false
	for _, path := range envFilePath {
		found, err := lookupEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path)
			continue
		}
		if err := godotenv.Load(found); err != nil {
			logger.Error("Failed to load environment file", "path", found, "error", err)
			continue
		}
		logger.Info("Loaded environment file", "path", found)
		loaded = true
		break
	}
	if !loaded {
		logger.Warn("No environment file loaded; using process environment only")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	logger := slog.Default()
	if cfg.Deposit.MinAmount <= 0 || cfg.Deposit.MaxAmount < cfg.Deposit.MinAmount {
		return nil, fmt.Errorf(
			"invalid deposit band: min %d, max %d",
			cfg.Deposit.MinAmount,
			cfg.Deposit.MaxAmount,
		)
	}

	logger.Info("App config loaded",
		"env", cfg.Env,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"db", maskValue(cfg.DB.Url),
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
		"deposit_min", cfg.Deposit.MinAmount,
		"deposit_max", cfg.Deposit.MaxAmount,
		"deposit_prefix", cfg.Deposit.DescriptionPrefix,
		"payos_configured", cfg.PaymentProviders.PayOS.Configured(),
		"payos_api_key", maskValue(cfg.PaymentProviders.PayOS.ApiKey),
		"payos_checksum_key", maskValue(cfg.PaymentProviders.PayOS.ChecksumKey),
		"bank_transfer_configured", cfg.BankTransfer.Configured(),
		"webhook_secret", maskValue(cfg.Webhook.SigningSecret),
		"event_bus", cfg.EventBus.Driver,
	)
	return &cfg, nil
}

// maskValue keeps the first two and last four characters of a secret.
func maskValue(secret string) string {
	if len(secret) <= 6 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-4:]
}

// lookupEnvFile walks up from the working directory until it finds name.
// Commands run from cmd/ or package tests still pick up the repository .env.
func lookupEnvFile(name string) (string, error) {
	if name == "" {
		name = ".env"
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
