package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abdullaharshad/budget-tracker/internal/services"
)

// jsonError writes the uniform failure payload.
func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// domainError maps a service failure onto its HTTP status. Unexpected errors
// become a generic 500 so store internals never leak to the client.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsValidation(err):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrAlreadyVerified),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrCodeExpired):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrWrongPassword):
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrEmailNotVerified):
		return jsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		return jsonError(c, fiber.StatusTooManyRequests, err.Error())
	default:
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
}
