package user

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lendly/lendly/internal/response"
)

// ContextKey is the fiber Locals key the auth middleware stores the resolved
// user under.
const ContextKey = "user"

// FromContext returns the authenticated user attached by the middleware, if
// any.
func FromContext(c *fiber.Ctx) (*User, bool) {
	u, ok := c.Locals(ContextKey).(*User)
	return u, ok && u != nil
}

// Handler exposes the profile and KYC endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a user HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type setupProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	DOB      string `json:"dob"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// SetupProfile completes the profile step of onboarding.
func (h *Handler) SetupProfile(c *fiber.Ctx) error {
	authed, ok := FromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	}

	var req setupProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, redirect, err := h.service.SetupProfile(c.UserContext(), authed.ID, ProfileInput{
		FullName:    req.FullName,
		Email:       req.Email,
		DateOfBirth: req.DOB,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
	})
	if err != nil {
		return mapError(err)
	}

	return response.JSON(c, http.StatusOK, "Profile setup successfully", fiber.Map{
		"user":       u.View(),
		"redirectTo": redirect,
	})
}

type uploadKYCRequest struct {
	DocType string `json:"docType"`
	FileURL string `json:"fileUrl"`
}

// UploadKYC records an uploaded identity document.
func (h *Handler) UploadKYC(c *fiber.Ctx) error {
	authed, ok := FromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	}

	var req uploadKYCRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, redirect, err := h.service.UploadKYC(c.UserContext(), authed.ID, req.DocType, req.FileURL)
	if err != nil {
		return mapError(err)
	}

	return response.JSON(c, http.StatusOK, "KYC document uploaded successfully", fiber.Map{
		"user":       u.View(),
		"redirectTo": redirect,
	})
}

// GetProfile returns the sanitized account record.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	authed, ok := FromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	}

	u, err := h.service.Get(c.UserContext(), authed.ID)
	if err != nil {
		return mapError(err)
	}

	return response.JSON(c, http.StatusOK, "", fiber.Map{"user": u.View()})
}

func mapError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(http.StatusBadRequest, ve.Msg)
	case errors.Is(err, ErrEmailTaken):
		return fiber.NewError(http.StatusBadRequest, "Email is already registered")
	case errors.Is(err, ErrProfileIncomplete):
		return fiber.NewError(http.StatusBadRequest, "Please complete profile setup first")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "User not found")
	default:
		return err
	}
}
