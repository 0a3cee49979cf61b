// Package middleware holds fiber middleware shared by the HTTP handlers.
package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserIDClaim is the token claim carrying the authenticated user id.
const UserIDClaim = "user_id"

const problemJSON = "application/problem+json"

// JwtProtected rejects requests without a valid HS256 bearer token and stores
// the parsed token in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"type": "about:blank", "title": "Bad Request", "status": fiber.StatusBadRequest, "detail": "Missing or malformed JWT",
		}, problemJSON)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"type": "about:blank", "title": "Unauthorized", "status": fiber.StatusUnauthorized, "detail": "Invalid or expired JWT",
	}, problemJSON)
}

// UserID returns the authenticated user id from the token stored by JwtProtected.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing user context", domain.ErrAuthentication)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: unexpected claims", domain.ErrAuthentication)
	}
	raw, ok := claims[UserIDClaim].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing %s claim", domain.ErrAuthentication, UserIDClaim)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s claim", domain.ErrAuthentication, UserIDClaim)
	}
	return id, nil
}

// SignToken issues a token for userID. Used by the CLI and tests; the wallet
// does not authenticate users itself.
func SignToken(cfg *config.Jwt, userID uuid.UUID, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		UserIDClaim: userID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(cfg.Expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
