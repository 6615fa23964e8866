// Package handlers is the HTTP surface: the payment-gated bounty
// creation flow plus the plain record endpoints around it.
package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"bounty-board/logger"
	"bounty-board/pricing"
	"bounty-board/services"
	"bounty-board/settlement"
	"bounty-board/types"
	"bounty-board/verification"
)

// PaymentHeader carries the client's funding transaction reference on
// a retried, paid request.
const PaymentHeader = "X-PAYMENT"

type Handler struct {
	store    services.RecordStore
	calc     *pricing.Calculator
	verifier *verification.Verifier
	executor *settlement.Executor
	validate *validator.Validate
	log      logger.Logger
}

func New(store services.RecordStore, calc *pricing.Calculator, verifier *verification.Verifier, executor *settlement.Executor, log logger.Logger) *Handler {
	return &Handler{
		store:    store,
		calc:     calc,
		verifier: verifier,
		executor: executor,
		validate: validator.New(),
		log:      log,
	}
}

// fail maps a typed error to its HTTP status; anything untyped is an
// internal error.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var typed *types.Error
	if !errors.As(err, &typed) {
		h.log.Error("internal error", map[string]any{"path": c.Path(), "error": err.Error()})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	status := fiber.StatusInternalServerError
	switch typed.Code {
	case types.CodeValidation:
		status = fiber.StatusBadRequest
	case types.CodeAuthorization:
		status = fiber.StatusForbidden
	case types.CodeNotFound:
		status = fiber.StatusNotFound
	case types.CodeStateConflict:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"message": typed.Message})
}
