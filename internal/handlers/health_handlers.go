package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abdullaharshad/budget-tracker/internal/repository"
)

type HealthHandler struct {
	client *mongo.Client
	dbName string
	txRepo repository.TransactionRepository
}

func NewHealthHandler(client *mongo.Client, dbName string, txRepo repository.TransactionRepository) *HealthHandler {
	return &HealthHandler{client: client, dbName: dbName, txRepo: txRepo}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	connected := h.client.Ping(c.Context(), nil) == nil

	var total int64
	if connected {
		if n, err := h.txRepo.Count(c.Context()); err == nil {
			total = n
		}
	}

	state := "disconnected"
	message := "Database not connected"
	status := fiber.StatusInternalServerError
	if connected {
		state = "connected"
		message = fmt.Sprintf("Database connected successfully! Total transactions: %d", total)
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "OK",
		"database": fiber.Map{
			"connected": connected,
			"name":      h.dbName,
			"state":     state,
		},
		"transactions": fiber.Map{"total": total},
		"message":      message,
	})
}
