package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lendly/lendly/internal/auth"
)

// RegisterAuthRoutes wires the signup/login OTP endpoints. The limiter guards
// every endpoint that issues a code.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, otpLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/signup", otpLimiter, h.Signup)
	group.Post("/verify-otp", h.VerifyOTP)
	group.Post("/request-login-otp", otpLimiter, h.RequestLoginOTP)
	group.Post("/verify-login-otp", h.VerifyLoginOTP)
	group.Post("/resend-otp", otpLimiter, h.ResendOTP)
}
