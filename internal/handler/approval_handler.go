package handler

import (
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApprovalHandler struct {
	service service.ApprovalService
}

func NewApprovalHandler(s service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{service: s}
}

// GetRequests lists requests; ?status=pending narrows to the approval queue
// (oldest first)
func (h *ApprovalHandler) GetRequests(c *fiber.Ctx) error {
	var err error
	var requests interface{}

	if c.Query("status") == "pending" {
		requests, err = h.service.ListPending()
	} else {
		requests, err = h.service.ListAll()
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch requests"})
	}
	return c.JSON(requests)
}

func (h *ApprovalHandler) GetRequest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	request, err := h.service.GetRequest(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(request)
}

// Approve replays the request's effect against the catalog
// POST /api/v1/requests/:id/approve
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	request, err := h.service.Approve(actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Request approved", "data": request})
}

// Reject finalizes the request with zero catalog effect
// POST /api/v1/requests/:id/reject
func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	request, err := h.service.Reject(actor(c), id, body.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Request rejected", "data": request})
}
