package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bounty-board/models"
)

type createSubmissionRequest struct {
	BountyID      string `json:"bounty_id" validate:"required"`
	HunterAddress string `json:"hunter_address" validate:"required,eth_addr"`
	Content       string `json:"content" validate:"required"`
	Contact       string `json:"contact"`
}

// CreateSubmission accepts work from any address while the parent
// bounty is OPEN. Once paid, the bounty takes no further entries.
func (h *Handler) CreateSubmission(c *fiber.Ctx) error {
	var req createSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	bounty, err := h.store.GetBounty(c.Context(), req.BountyID)
	if err != nil {
		return h.fail(c, err)
	}
	if bounty == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Bounty not found"})
	}
	if bounty.Status != models.BountyStatusOpen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Bounty is not open for submissions"})
	}

	sub := &models.Submission{
		ID:            uuid.NewString(),
		BountyID:      bounty.ID,
		HunterAddress: strings.ToLower(req.HunterAddress),
		Content:       req.Content,
		Contact:       req.Contact,
	}
	if err := h.store.CreateSubmission(c.Context(), sub); err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *Handler) ListSubmissions(c *fiber.Ctx) error {
	bountyID := c.Query("bounty_id")
	if bountyID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "bounty_id is required"})
	}

	subs, err := h.store.ListSubmissions(c.Context(), bountyID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(subs)
}
