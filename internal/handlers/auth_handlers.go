package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abdullaharshad/budget-tracker/internal/middleware"
	"github.com/abdullaharshad/budget-tracker/internal/services"
)

type AuthHandler struct {
	svc     *services.AuthService
	limiter *middleware.ResendLimiter
	logger  *zap.SugaredLogger
}

func NewAuthHandler(svc *services.AuthService, limiter *middleware.ResendLimiter, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{svc: svc, limiter: limiter, logger: logger}
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.svc.Signup(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return domainError(c, err)
	}

	body := fiber.Map{
		"message":              "Account created successfully! Please check your email for verification code.",
		"email":                res.Email,
		"requiresVerification": res.RequiresVerification,
	}
	if res.VerificationCode != "" {
		body["message"] = "Account created successfully! Email service not configured. Use the code below:"
		body["verificationCode"] = res.VerificationCode
		body["emailNotConfigured"] = true
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

type verifyEmailReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.svc.VerifyEmail(c.Context(), req.Email, req.Code); err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Email verified successfully! You can now login."})
}

type resendCodeReq struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendCode(c *fiber.Ctx) error {
	var req resendCodeReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if h.limiter != nil && req.Email != "" && !h.limiter.Allow(c.Context(), req.Email) {
		return domainError(c, services.ErrRateLimited)
	}

	res, err := h.svc.ResendCode(c.Context(), req.Email)
	if err != nil {
		return domainError(c, err)
	}

	body := fiber.Map{"message": "Verification code sent to your email"}
	if res.VerificationCode != "" {
		body["message"] = "Email service not configured. Use the code below:"
		body["verificationCode"] = res.VerificationCode
		body["emailNotConfigured"] = true
	}
	return c.JSON(body)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		// EmailNotVerified deliberately identifies the account so the client
		// can route straight to the verification step.
		if errors.Is(err, services.ErrEmailNotVerified) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":                err.Error(),
				"requiresVerification": true,
				"email":                req.Email,
			})
		}
		return domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Me returns the identity resolved by the session guard.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "No token provided, authorization denied")
	}
	return c.JSON(fiber.Map{"user": user.Public()})
}
