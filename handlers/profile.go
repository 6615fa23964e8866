package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bounty-board/models"
)

type upsertProfileRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,eth_addr"`
	Username      string `json:"username"`
	Bio           string `json:"bio"`
	Twitter       string `json:"twitter"`
	Discord       string `json:"discord"`
}

func (h *Handler) UpsertProfile(c *fiber.Ctx) error {
	var req upsertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	profile := &models.Profile{
		WalletAddress: strings.ToLower(req.WalletAddress),
		Username:      req.Username,
		Bio:           req.Bio,
		Twitter:       req.Twitter,
		Discord:       req.Discord,
	}
	if err := h.store.UpsertProfile(c.Context(), profile); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profile)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	address := strings.ToLower(c.Params("address"))

	profile, err := h.store.GetProfile(c.Context(), address)
	if err != nil {
		return h.fail(c, err)
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Profile not found"})
	}
	return c.JSON(profile)
}
