package loan

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lendly/lendly/internal/response"
	"github.com/lendly/lendly/internal/user"
)

// Handler exposes loan and repayment endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs a loan HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type applyRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Term     int     `json:"term"`
	LoanType string  `json:"type"`
}

// Apply submits a loan application for the authenticated user.
func (h *Handler) Apply(c *fiber.Ctx) error {
	authed, ok := user.FromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	}

	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.LoanType == "" {
		return fiber.NewError(http.StatusBadRequest, "Name and loan type are required")
	}

	l, err := h.svc.Apply(c.UserContext(), authed.ID, req.Name, req.Amount, req.Term, req.LoanType)
	if err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusCreated, "Loan application submitted", fiber.Map{"loan": l})
}

// ListMine returns the authenticated user's applications.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	authed, ok := user.FromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	}
	loans, err := h.svc.ListByUser(c.UserContext(), authed.ID)
	if err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusOK, "", fiber.Map{"loans": loans})
}

// ListAll returns every application. Admin only; routes enforce the role.
func (h *Handler) ListAll(c *fiber.Ctx) error {
	loans, err := h.svc.ListAll(c.UserContext())
	if err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusOK, "", fiber.Map{"loans": loans})
}

// Approve transitions a pending loan to approved and builds its schedule.
func (h *Handler) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid loan ID")
	}
	if err := h.svc.Approve(c.UserContext(), id); err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusOK, "Loan approved", nil)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject transitions a pending loan to rejected.
func (h *Handler) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid loan ID")
	}
	var req rejectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "Rejection reason is required")
	}
	if err := h.svc.Reject(c.UserContext(), id, req.Reason); err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusOK, "Loan rejected", nil)
}

// Repayments returns the schedule for a loan.
func (h *Handler) Repayments(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid loan ID")
	}
	repayments, err := h.svc.Repayments(c.UserContext(), loanID)
	if err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusOK, "", fiber.Map{"repayments": repayments})
}

// Pay settles one installment owned by the authenticated user.
func (h *Handler) Pay(c *fiber.Ctx) error {
	authed, ok := user.FromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid repayment ID")
	}
	if err := h.svc.Pay(c.UserContext(), id, authed.ID); err != nil {
		return mapLoanError(err)
	}
	return response.JSON(c, http.StatusOK, "Repayment recorded", nil)
}

func mapLoanError(err error) error {
	switch {
	case errors.Is(err, ErrLoanNotFound):
		return fiber.NewError(http.StatusNotFound, "Loan not found")
	case errors.Is(err, ErrRepaymentNotFound):
		return fiber.NewError(http.StatusNotFound, "Repayment not found")
	case errors.Is(err, ErrNotOwner):
		return fiber.NewError(http.StatusForbidden, "User does not own this loan")
	case errors.Is(err, ErrAlreadyPaid):
		return fiber.NewError(http.StatusBadRequest, "Repayment already paid")
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "Amount and term must be positive")
	default:
		return err
	}
}
