package response

import "github.com/gofiber/fiber/v2"

// Envelope is the uniform JSON body shape for every endpoint: handlers fill
// success/message/data, the error handler fills success/message.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success envelope with the given status code.
func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope. Used by the app-level error handler.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message})
}
