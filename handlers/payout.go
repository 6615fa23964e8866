package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bounty-board/settlement"
)

// Payout hands a release request to the executor. Every precondition
// failure surfaces as its own status; a broadcast failure is a 500
// with the bounty untouched.
func (h *Handler) Payout(c *fiber.Ctx) error {
	var req settlement.PayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	result, err := h.executor.Execute(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}
