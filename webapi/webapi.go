// Package webapi provides the HTTP surface of the wallet:
// - deposit: opening deposits, status polling and balance
// - payment: the public payment-provider callback
package webapi

import (
	"errors"
	"strings"

	"github.com/gamewallet/wallet/pkg/app"
	"github.com/gamewallet/wallet/webapi/common"
	depositweb "github.com/gamewallet/wallet/webapi/deposit"
	_ "github.com/gamewallet/wallet/webapi/docs"
	"github.com/gamewallet/wallet/webapi/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unlimited paths are exempt from rate limiting; the provider must always reach the callback.
var unlimited = map[string]bool{
	"/health":                  true,
	"/metrics":                 true,
	"/api/v1/webhooks/payment": true,
}

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App, gatherer prometheus.Gatherer) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return unlimited[c.Path()] || strings.HasPrefix(c.Path(), "/swagger/")
		},
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	payment.Routes(fiberApp, a.SettlementService, cfg.Webhook, a.Deps.Metrics, a.Deps.Logger)
	depositweb.Routes(fiberApp, a.DepositService, cfg)
	return fiberApp
}
