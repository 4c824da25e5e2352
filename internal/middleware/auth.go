package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/abdullaharshad/budget-tracker/internal/auth"
	"github.com/abdullaharshad/budget-tracker/internal/models"
	"github.com/abdullaharshad/budget-tracker/internal/repository"
)

// UserLocalKey is where the guard stores the resolved *models.User.
const UserLocalKey = "user"

// SessionGuard resolves the bearer token to a credential and attaches it to
// the request. It is the only authorization gate; there are no role tiers.
// Expired and tampered tokens get distinct messages so clients can tell a
// stale session from a broken one.
func SessionGuard(tokens *auth.TokenIssuer, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "No token provided, authorization denied"})
		}

		userID, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		// The subject may have been deleted between issuance and use.
		user, err := users.FindByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).
					JSON(fiber.Map{"error": "Token is not valid"})
			}
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Server error"})
		}

		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the credential attached by SessionGuard.
func CurrentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(UserLocalKey).(*models.User); ok {
		return u
	}
	return nil
}
