package deposit

import (
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/middleware"
	depositsvc "github.com/gamewallet/wallet/pkg/service/deposit"
	"github.com/gamewallet/wallet/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers the deposit API. All routes require a JWT.
//
//   - POST /api/v1/deposits      : open a deposit and get a payable reference
//   - GET  /api/v1/deposits/:id  : status of one of the caller's deposits
//   - GET  /api/v1/balance       : the caller's balance
func Routes(app *fiber.App, depositSvc *depositsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/api/v1/deposits", protected, CreateDeposit(depositSvc))
	app.Get("/api/v1/deposits/:id", protected, GetDeposit(depositSvc))
	app.Get("/api/v1/balance", protected, GetBalance(depositSvc))
}

// CreateDeposit opens a deposit for the authenticated user.
// @Summary Open a deposit
// @Tags deposits
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Deposit amount and optional promo code"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /api/v1/deposits [post]
// @Security Bearer
func CreateDeposit(depositSvc *depositsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateRequest](c)
		if input == nil {
			return err
		}
		out, err := depositSvc.Initiate(c.UserContext(), userID, input.Amount, input.PromoCode)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Deposit created", toCreateResponse(out))
	}
}

// GetDeposit returns one of the caller's deposits with its bonus, if any.
// @Summary Deposit status
// @Tags deposits
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/v1/deposits/{id} [get]
// @Security Bearer
func GetDeposit(depositSvc *depositsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err, fiber.StatusBadRequest)
		}
		status, err := depositSvc.GetDeposit(c.UserContext(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit fetched", toStatusResponse(status))
	}
}

// GetBalance returns the caller's materialized balance.
// @Summary Balance
// @Tags deposits
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/v1/balance [get]
// @Security Bearer
func GetBalance(depositSvc *depositsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		b, err := depositSvc.GetBalance(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", BalanceResponse{
			UserID:    userID,
			Amount:    b.Amount,
			UpdatedAt: b.UpdatedAt,
		})
	}
}
