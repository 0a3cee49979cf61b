// Package payment exposes the public payment-provider callback.
package payment

import (
	"errors"
	"log/slog"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/service/settlement"
	"github.com/gamewallet/wallet/pkg/webhook"
	"github.com/gamewallet/wallet/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// StatusIgnored is reported for callbacks that were accepted but changed nothing.
const StatusIgnored = "ignored"

// WebhookResponse is the body of every 200 answer to the provider.
type WebhookResponse struct {
	Status    string `json:"status"`
	Outcome   string `json:"outcome,omitempty"`
	OrderCode int64  `json:"order_code,omitempty"`
}

// Routes registers the payment callback.
func Routes(app *fiber.App, settlementSvc *settlement.Service, cfg *config.Webhook, m *metrics.Metrics, logger *slog.Logger) {
	app.Post("/api/v1/webhooks/payment", WebhookHandler(settlementSvc, cfg, m, logger))
}

// WebhookHandler verifies the callback signature over the raw body before
// anything else, then settles. Only authentication failures, amount
// mismatches and storage errors answer with something other than 200.
// @Summary Payment provider callback
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Signature header string true "HMAC-SHA256 of the raw body"
// @Param request body payment.Callback true "Provider callback"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /api/v1/webhooks/payment [post]
func WebhookHandler(
	settlementSvc *settlement.Service,
	cfg *config.Webhook,
	m *metrics.Metrics,
	logger *slog.Logger,
) fiber.Handler {
	header := webhook.DefaultHeader
	if cfg.SignatureHeader != "" {
		header = cfg.SignatureHeader
	}
	log := logger.With("handler", "payment.WebhookHandler")
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if err := webhook.Verify(body, c.Get(header), cfg.SigningSecret); err != nil {
			m.IncWebhookAuthFailure()
			log.Warn("Rejected callback", "ip", c.IP(), "error", err)
			return common.ProblemDetailsJSON(c, "Unauthorized", err, "invalid callback signature", fiber.StatusUnauthorized)
		}

		evt, err := payment.ParseCallback(body)
		if err != nil {
			log.Warn("Ignoring malformed callback", "error", err)
			return c.Status(fiber.StatusOK).JSON(WebhookResponse{Status: StatusIgnored})
		}

		res, err := settlementSvc.Settle(c.UserContext(), *evt)
		switch {
		case errors.Is(err, domain.ErrAmountMismatch):
			return common.ProblemDetailsJSON(c, "Amount mismatch", err, fiber.StatusBadRequest)
		case errors.Is(err, domain.ErrValidation):
			return c.Status(fiber.StatusOK).JSON(WebhookResponse{Status: StatusIgnored, OrderCode: evt.OrderCode})
		case err != nil:
			log.Error("Settlement failed", "order_code", evt.OrderCode, "error", err)
			return common.ProblemDetailsJSON(c, "Internal Server Error", err, "settlement failed, retry later", fiber.StatusInternalServerError)
		}

		status := string(res.Status)
		if status == "" {
			status = StatusIgnored
		}
		return c.Status(fiber.StatusOK).JSON(WebhookResponse{
			Status:    status,
			Outcome:   res.Outcome,
			OrderCode: res.OrderCode,
		})
	}
}
