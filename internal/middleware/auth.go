// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"errors"

	"devconnect/internal/config"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenHeader is the request header carrying the signed token. The API keeps
// the original client contract of a dedicated header instead of the standard
// bearer scheme.
const TokenHeader = "x-auth-token"

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// A missing token is an error, not an anonymous identity. Token failures map
// to 401; anything outside the known verification failures maps to 500 so a
// broken verifier never masquerades as a client fault.
func AuthRequired(c *fiber.Ctx) error {
	tokenString := c.Get(TokenHeader)
	if tokenString == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization denied, try login"))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		if isTokenRejection(err) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization denied, try login"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if !token.Valid {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization denied, try login"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token claims"))
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token structure - missing subject"))
	}

	userID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid user ID in token"))
	}

	// Store user ID in context
	c.Locals("userID", userID)

	return c.Next()
}

// isTokenRejection reports whether err is one of the expected verification
// failures (tampered, expired, malformed) as opposed to an internal fault.
func isTokenRejection(err error) bool {
	return errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) ||
		errors.Is(err, jwt.ErrTokenExpired) ||
		errors.Is(err, jwt.ErrTokenNotValidYet)
}
