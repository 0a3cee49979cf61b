// Package common holds the response envelope and error mapping shared by the HTTP handlers.
package common

import (
	"errors"

	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes a Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 problem. The optional extras are a detail
// string and an explicit status; without a status it is derived from err.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extras ...any) error {
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   ErrorToStatusCode(err),
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, x := range extras {
		switch v := x.(type) {
		case int:
			pd.Status = v
		case string:
			pd.Detail = v
		default:
			pd.Errors = v
		}
	}
	return c.Status(pd.Status).JSON(pd, "application/problem+json")
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrAuthentication):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, promotion.ErrInvalidBonus):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrPersistenceConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrProviderUnavailable),
		errors.Is(err, domain.ErrPaymentNotConfigured):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// On failure it writes the problem response and returns a nil input with the write error.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}
