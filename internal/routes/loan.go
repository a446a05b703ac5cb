package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lendly/lendly/internal/loan"
	"github.com/lendly/lendly/internal/middleware"
)

// RegisterLoanRoutes wires the loan application and repayment endpoints. All
// of them require a token; approve/reject/list-all additionally require the
// admin role.
func RegisterLoanRoutes(r fiber.Router, authmw fiber.Handler, h *loan.Handler) {
	loans := r.Group("/loans", authmw, middleware.RequireUser())
	loans.Post("/apply", h.Apply)
	loans.Get("/my", h.ListMine)
	loans.Get("/:id/repayments", h.Repayments)

	admin := middleware.RequireAdmin()
	loans.Get("/", admin, h.ListAll)
	loans.Post("/:id/approve", admin, h.Approve)
	loans.Post("/:id/reject", admin, h.Reject)

	repayments := r.Group("/repayments", authmw, middleware.RequireUser())
	repayments.Post("/:id/pay", h.Pay)
}
