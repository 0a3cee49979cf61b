// Package testutils builds a complete wallet HTTP app for handler and end-to-end tests.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gamewallet/wallet/infra/eventbus"
	"github.com/gamewallet/wallet/infra/repository/memory"
	"github.com/gamewallet/wallet/pkg/app"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/middleware"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/repository"
	"github.com/gamewallet/wallet/pkg/webhook"
	"github.com/gamewallet/wallet/webapi"
	"github.com/gamewallet/wallet/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// WebhookSecret signs callbacks in tests.
const WebhookSecret = "test-webhook-secret"

// Harness is a wallet app with its dependencies exposed for assertions.
type Harness struct {
	App      *app.App
	Fiber    *fiber.App
	Bus      *eventbus.MemoryEventBus
	Registry *prometheus.Registry
	Config   *config.App
}

// TestConfig returns a config suitable for handler tests.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "test-jwt-secret", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Deposit: &config.Deposit{
			MinAmount:         10000,
			MaxAmount:         500000000,
			DescriptionPrefix: "NAP",
			Method:            "payment_link",
		},
		Webhook:          &config.Webhook{SigningSecret: WebhookSecret, SignatureHeader: webhook.DefaultHeader},
		Server:           &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:              &config.Log{Format: "text"},
		DB:               &config.DB{},
		PaymentProviders: &config.PaymentProviders{PayOS: &config.PayOS{}},
		BankTransfer:     &config.BankTransfer{},
		EventBus:         &config.EventBus{Driver: "memory"},
	}
}

// NewHarness wires the full app over uow. A nil uow uses a fresh in-memory store.
// Payable sources are left unconfigured unless given.
func NewHarness(t testing.TB, cfg *config.App, uow repository.UnitOfWork, sources ...payment.Source) *Harness {
	t.Helper()
	if cfg == nil {
		cfg = TestConfig()
	}
	if uow == nil {
		uow = memory.NewUoW(memory.NewStore())
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen, err := ordercode.NewGenerator(cfg.Deposit.NodeID)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	bus := eventbus.NewWithMemory(logger)
	deps := &config.Deps{
		Uow:        uow,
		OrderCodes: gen,
		EventBus:   bus,
		Metrics:    metrics.MustNew(reg),
		Logger:     logger,
		Config:     cfg,
	}
	if len(sources) > 0 {
		deps.PaymentProvider = sources[0]
	}
	if len(sources) > 1 {
		deps.BankTransfer = sources[1]
	}
	a := app.New(deps)
	return &Harness{
		App:      a,
		Fiber:    webapi.SetupApp(a, reg),
		Bus:      bus,
		Registry: reg,
		Config:   cfg,
	}
}

// Token issues a bearer token for userID.
func (h *Harness) Token(t testing.TB, userID uuid.UUID) string {
	t.Helper()
	token, err := middleware.SignToken(h.Config.Auth.Jwt, userID, time.Now())
	require.NoError(t, err)
	return token
}

// Do sends a request through the fiber app. A non-empty token is sent as a bearer token.
func (h *Harness) Do(t testing.TB, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := h.Fiber.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Callback builds a provider callback body.
func Callback(orderCode, amount int64, status string) string {
	return fmt.Sprintf(
		`{"code":"00","desc":"success","data":{"orderCode":%d,"amount":%d,"status":%q}}`,
		orderCode, amount, status,
	)
}

// PostCallback sends body to the webhook signed with secret; an empty secret sends no signature.
func (h *Harness) PostCallback(t testing.TB, body, secret string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(h.Config.Webhook.SignatureHeader, webhook.Sign([]byte(body), secret))
	}
	resp, err := h.Fiber.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Decode reads a common.Response envelope and decodes its data into out.
func Decode(t testing.TB, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var env common.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
