package handler

import (
	"strconv"

	"go-retail-pos/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuditHandler struct {
	auditRepo repository.AuditRepository
}

func NewAuditHandler(auditRepo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// GetAuditLog returns recent audit entries, newest first
// Query params: limit (default 100), user_id
func (h *AuditHandler) GetAuditLog(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
		}
		entries, err := h.auditRepo.FindByUser(userID, limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch audit log"})
		}
		return c.JSON(entries)
	}

	entries, err := h.auditRepo.FindAll(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch audit log"})
	}
	return c.JSON(entries)
}
