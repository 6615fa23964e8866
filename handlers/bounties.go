package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bounty-board/models"
	"bounty-board/types"
)

type createBountyRequest struct {
	Title          string            `json:"title" validate:"required"`
	Description    string            `json:"description" validate:"required"`
	Prizes         []types.PrizeTier `json:"prizes"`
	CreatorAddress string            `json:"creator_address" validate:"required,eth_addr"`
}

// CreateBounty is the challenge-response gate. The requirement for the
// 402 body and the requirement handed to the verifier come from the
// same calculator call over the same request body, so the two legs of
// the flow can never quote different amounts.
func (h *Handler) CreateBounty(c *fiber.Ctx) error {
	var req createBountyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	requirement, validTiers := h.calc.Requirement(req.Prizes)

	payment := c.Get(PaymentHeader)
	if payment == "" {
		return c.Status(fiber.StatusPaymentRequired).JSON(types.NewPaymentChallenge(requirement))
	}

	result, err := h.verifier.Verify(c.Context(), payment, requirement)
	if err != nil {
		return h.fail(c, err)
	}
	if !result.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": result.InvalidReason})
	}

	prize := "MULTI"
	if len(validTiers) == 0 {
		prize = "0"
	}

	bounty := &models.Bounty{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Prizes:         validTiers,
		Prize:          prize,
		CreatorAddress: strings.ToLower(req.CreatorAddress),
		Status:         models.BountyStatusOpen,
		TxHash:         strings.ToLower(payment),
	}

	if err := h.store.CreateBounty(c.Context(), bounty); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "funding transaction already used"})
		}
		return h.fail(c, err)
	}

	h.log.Info("bounty created", map[string]any{
		"bounty": bounty.ID, "creator": bounty.CreatorAddress, "tx": bounty.TxHash,
	})
	return c.Status(fiber.StatusCreated).JSON(bounty)
}

// ListBounties supports the status and creator filters the board UI
// uses.
func (h *Handler) ListBounties(c *fiber.Ctx) error {
	status := c.Query("status")
	creator := strings.ToLower(c.Query("creator"))

	bounties, err := h.store.ListBounties(c.Context(), status, creator)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(bounties)
}

func (h *Handler) GetBounty(c *fiber.Ctx) error {
	bounty, err := h.store.GetBounty(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if bounty == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Bounty not found"})
	}
	return c.JSON(bounty)
}
