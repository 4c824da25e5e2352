package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abdullaharshad/budget-tracker/internal/export"
	"github.com/abdullaharshad/budget-tracker/internal/middleware"
	"github.com/abdullaharshad/budget-tracker/internal/models"
	"github.com/abdullaharshad/budget-tracker/internal/repository"
)

type TransactionHandler struct {
	repo     repository.TransactionRepository
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewTransactionHandler(repo repository.TransactionRepository, logger *zap.SugaredLogger) *TransactionHandler {
	return &TransactionHandler{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	transactions, err := h.repo.ListByUser(c.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("failed to list transactions", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error fetching transactions")
	}
	return c.JSON(transactions)
}

type createTransactionReq struct {
	Title    string  `json:"title" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Category string  `json:"category"`
	Type     string  `json:"type" validate:"required,oneof=income expense"`
	Date     string  `json:"date"`
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req createTransactionReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)

	if err := h.validate.Struct(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return jsonError(c, fiber.StatusBadRequest, validationMessage(ve))
		}
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Category == "" {
		req.Category = models.DefaultCategory
	}
	date := time.Now().UTC()
	if req.Date != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Date); err == nil {
			date = parsed
		} else if parsed, err := time.Parse("2006-01-02", req.Date); err == nil {
			date = parsed
		}
	}

	t := &models.Transaction{
		UserID:   user.ID,
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Type:     req.Type,
		Date:     date,
	}
	if err := h.repo.Create(c.Context(), t); err != nil {
		h.logger.Errorw("failed to create transaction", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error creating transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	err := h.repo.DeleteOwned(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Transaction not found.")
		}
		h.logger.Errorw("failed to delete transaction", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error deleting transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	summary, err := h.repo.SummaryByUser(c.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("failed to build summary", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error fetching summary")
	}
	return c.JSON(summary)
}

func (h *TransactionHandler) ExportCSV(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	transactions, err := h.repo.ListByUser(c.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("failed to export transactions", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error exporting transactions")
	}
	data, err := export.BuildCSV(transactions)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Error exporting transactions")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.Send(data)
}

func (h *TransactionHandler) ExportPDF(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	transactions, err := h.repo.ListByUser(c.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("failed to export transactions", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error exporting transactions")
	}
	summary, err := h.repo.SummaryByUser(c.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("failed to build summary", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error exporting transactions")
	}
	data, err := export.BuildPDF(user.Name, transactions, summary)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Error exporting transactions")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.pdf"`)
	return c.Send(data)
}

func validationMessage(ve validator.ValidationErrors) string {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Field() {
		case "Title":
			msgs = append(msgs, "Title is required.")
		case "Amount":
			msgs = append(msgs, "Amount must be a positive number.")
		case "Type":
			msgs = append(msgs, "Type must be either 'income' or 'expense'.")
		default:
			msgs = append(msgs, fe.Field()+" is invalid.")
		}
	}
	return strings.Join(msgs, " ")
}
