package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/points_ledger/internal/points"
)

// RegisterPointsRoutes wires the ledger endpoints. spendLimiter may be nil.
func RegisterPointsRoutes(r fiber.Router, h *points.Handler, spendLimiter fiber.Handler) {
	r.Post("/add", h.Add)
	if spendLimiter != nil {
		r.Post("/spend", spendLimiter, h.Spend)
	} else {
		r.Post("/spend", h.Spend)
	}
	r.Get("/balance", h.Balance)
}
