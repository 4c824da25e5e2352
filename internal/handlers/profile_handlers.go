package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abdullaharshad/budget-tracker/internal/middleware"
	"github.com/abdullaharshad/budget-tracker/internal/services"
	"github.com/abdullaharshad/budget-tracker/internal/storage"
)

// pictureURLPrefix is where the static uploads route serves stored files.
const pictureURLPrefix = "/api/uploads/profiles/"

type ProfileHandler struct {
	svc       *services.AuthService
	disk      *storage.Disk
	maxSizeMB int
	logger    *zap.SugaredLogger
}

func NewProfileHandler(svc *services.AuthService, disk *storage.Disk, maxSizeMB int, logger *zap.SugaredLogger) *ProfileHandler {
	return &ProfileHandler{svc: svc, disk: disk, maxSizeMB: maxSizeMB, logger: logger}
}

func pictureURL(filename string) *string {
	if filename == "" {
		return nil
	}
	u := pictureURLPrefix + filename
	return &u
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":             user.ID.Hex(),
			"name":           user.Name,
			"email":          user.Email,
			"profilePicture": pictureURL(user.ProfilePicture),
			"createdAt":      user.CreatedAt,
		},
	})
}

type updateNameReq struct {
	Name string `json:"name"`
}

func (h *ProfileHandler) UpdateName(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req updateNameReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updated, err := h.svc.UpdateName(c.Context(), user.ID.Hex(), req.Name)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Name updated successfully",
		"user": fiber.Map{
			"id":             updated.ID.Hex(),
			"name":           updated.Name,
			"email":          updated.Email,
			"profilePicture": pictureURL(updated.ProfilePicture),
		},
	})
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req changePasswordReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.svc.ChangePassword(c.Context(), user.ID.Hex(), req.CurrentPassword, req.NewPassword); err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func (h *ProfileHandler) UploadPicture(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	fh, err := c.FormFile("profilePicture")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "No file uploaded")
	}
	if fh.Size > int64(h.maxSizeMB)*1024*1024 {
		return jsonError(c, fiber.StatusBadRequest,
			fmt.Sprintf("File too large, maximum size is %dMB", h.maxSizeMB))
	}
	ext, err := storage.ValidateImageName(fh.Filename)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	filename := user.ID.Hex() + "-" + uuid.NewString() + ext
	if err := h.disk.Save(fh, filename); err != nil {
		h.logger.Errorw("failed to store profile picture", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Error uploading profile picture")
	}

	old, err := h.svc.SetProfilePicture(c.Context(), user.ID.Hex(), filename)
	if err != nil {
		// Keep disk and record consistent when the update fails.
		_ = h.disk.Remove(filename)
		return domainError(c, err)
	}
	if err := h.disk.Remove(old); err != nil {
		h.logger.Warnw("failed to remove old profile picture", "file", old, "error", err)
	}

	return c.JSON(fiber.Map{
		"message":        "Profile picture updated successfully",
		"profilePicture": pictureURLPrefix + filename,
		"user": fiber.Map{
			"id":             user.ID.Hex(),
			"name":           user.Name,
			"email":          user.Email,
			"profilePicture": pictureURLPrefix + filename,
		},
	})
}

func (h *ProfileHandler) DeletePicture(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	old, err := h.svc.SetProfilePicture(c.Context(), user.ID.Hex(), "")
	if err != nil {
		return domainError(c, err)
	}
	if err := h.disk.Remove(old); err != nil {
		h.logger.Warnw("failed to remove profile picture", "file", old, "error", err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile picture deleted successfully",
		"user": fiber.Map{
			"id":             user.ID.Hex(),
			"name":           user.Name,
			"email":          user.Email,
			"profilePicture": nil,
		},
	})
}
