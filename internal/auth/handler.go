package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lendly/lendly/internal/response"
	"github.com/lendly/lendly/internal/user"
)

// Handler exposes the signup/login OTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type signupRequest struct {
	PhoneNumber  string `json:"phoneNumber"`
	ReferralCode string `json:"referralCode"`
}

// Signup starts (or resumes) onboarding for a phone number.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.PhoneNumber == "" {
		return fiber.NewError(http.StatusBadRequest, "Phone number is required")
	}

	res, err := h.svc.Signup(c.UserContext(), req.PhoneNumber, req.ReferralCode)
	if err != nil {
		return mapError(err)
	}

	if res.RedirectTo != "" {
		return response.JSON(c, http.StatusOK, "User already exists and setup complete", fiber.Map{
			"redirectTo": res.RedirectTo,
		})
	}

	data := fiber.Map{"phoneNumber": res.PhoneNumber}
	if res.OTP != "" {
		data["otp"] = res.OTP
	}
	if res.Created {
		return response.JSON(c, http.StatusCreated, "OTP sent successfully", data)
	}
	return response.JSON(c, http.StatusOK, "OTP sent to continue setup", data)
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

// VerifyOTP completes the signup verification step.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.VerifySignupOTP(c.UserContext(), req.PhoneNumber, req.OTP)
	if err != nil {
		return mapError(err)
	}

	return response.JSON(c, http.StatusOK, "OTP verified successfully", fiber.Map{
		"token":      res.Token,
		"user":       res.User.View(),
		"redirectTo": res.RedirectTo,
	})
}

type requestLoginOTPRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
}

// RequestLoginOTP issues a login code by email or phone.
func (h *Handler) RequestLoginOTP(c *fiber.Ctx) error {
	var req requestLoginOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.EmailOrPhone == "" {
		return fiber.NewError(http.StatusBadRequest, "Email or phone number is required")
	}

	res, err := h.svc.RequestLoginOTP(c.UserContext(), req.EmailOrPhone)
	if err != nil {
		return mapError(err)
	}

	data := fiber.Map{"emailOrPhone": res.EmailOrPhone, "isAdmin": res.IsAdmin}
	if res.OTP != "" {
		data["otp"] = res.OTP
	}
	return response.JSON(c, http.StatusOK, "OTP sent successfully", data)
}

type verifyLoginOTPRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	OTP          string `json:"otp"`
}

// VerifyLoginOTP completes a login and returns a bearer token.
func (h *Handler) VerifyLoginOTP(c *fiber.Ctx) error {
	var req verifyLoginOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.VerifyLoginOTP(c.UserContext(), req.EmailOrPhone, req.OTP)
	if err != nil {
		return mapError(err)
	}

	message := "Login successful"
	if res.User.IsAdmin {
		message = "Admin login successful"
	}
	return response.JSON(c, http.StatusOK, message, fiber.Map{
		"token":      res.Token,
		"user":       res.User.View(),
		"redirectTo": res.RedirectTo,
	})
}

type resendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// ResendOTP replaces a pending code with a fresh one.
func (h *Handler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.ResendOTP(c.UserContext(), req.PhoneNumber)
	if err != nil {
		return mapError(err)
	}

	data := fiber.Map{"phoneNumber": res.PhoneNumber}
	if res.OTP != "" {
		data["otp"] = res.OTP
	}
	return response.JSON(c, http.StatusOK, "OTP resent successfully", data)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrNoOTPPending):
		return fiber.NewError(http.StatusBadRequest, "No OTP found. Please request a new OTP.")
	case errors.Is(err, ErrInvalidOTP):
		return fiber.NewError(http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, ErrOTPExpired):
		return fiber.NewError(http.StatusBadRequest, "OTP has expired")
	case errors.Is(err, ErrNoSecret):
		return fiber.NewError(http.StatusInternalServerError, "JWT secret not configured")
	default:
		return err
	}
}
