package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abdullaharshad/budget-tracker/internal/auth"
	"github.com/abdullaharshad/budget-tracker/internal/handlers"
	"github.com/abdullaharshad/budget-tracker/internal/middleware"
	"github.com/abdullaharshad/budget-tracker/internal/repository"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Transactions *handlers.TransactionHandler
	Health       *handlers.HealthHandler
	Tokens       *auth.TokenIssuer
	Users        repository.UserRepository
	UploadsDir   string
}

// Register wires every route under /api. The session guard protects
// everything except signup, verification, login, health and static uploads.
func Register(app *fiber.App, d Deps) {
	api := app.Group("/api")

	api.Get("/health", d.Health.Check)
	api.Static("/uploads/profiles", d.UploadsDir)

	guard := middleware.SessionGuard(d.Tokens, d.Users)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", d.Auth.Signup)
	authGroup.Post("/verify-email", d.Auth.VerifyEmail)
	authGroup.Post("/resend-code", d.Auth.ResendCode)
	authGroup.Post("/login", d.Auth.Login)
	authGroup.Get("/me", guard, d.Auth.Me)

	profile := api.Group("/profile", guard)
	profile.Get("/", d.Profile.Get)
	profile.Put("/name", d.Profile.UpdateName)
	profile.Put("/password", d.Profile.ChangePassword)
	profile.Post("/picture", d.Profile.UploadPicture)
	profile.Delete("/picture", d.Profile.DeletePicture)

	tx := api.Group("/transactions", guard)
	tx.Get("/", d.Transactions.List)
	tx.Post("/", d.Transactions.Create)
	tx.Get("/summary", d.Transactions.Summary)
	tx.Get("/export/csv", d.Transactions.ExportCSV)
	tx.Get("/export/pdf", d.Transactions.ExportPDF)
	tx.Delete("/:id", d.Transactions.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found."})
	})
}
