package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the full HTTP surface.
func SetupRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	api.Post("/bounties", h.CreateBounty)
	api.Get("/bounties", h.ListBounties)
	api.Get("/bounties/:id", h.GetBounty)

	api.Post("/submissions", h.CreateSubmission)
	api.Get("/submissions", h.ListSubmissions)

	api.Post("/payout", h.Payout)

	api.Post("/profile", h.UpsertProfile)
	api.Get("/profile/:address", h.GetProfile)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
