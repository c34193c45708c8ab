package utils

import "github.com/gofiber/fiber/v2"

// Envelope is the wire shape shared by every endpoint: a success flag, a
// short human-readable message and an optional data payload.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess writes a 200 envelope carrying data.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus writes a success envelope with an explicit status,
// used by create endpoints that answer 201.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	return write(c, status, Envelope{
		Success: true,
		Data:    data,
		Message: orDefault(message, "success"),
	})
}

// SendError writes an error envelope. The message is client-safe; internal
// detail belongs in the handler's log line, not here.
func SendError(c *fiber.Ctx, status int, message string) error {
	return write(c, status, Envelope{
		Success: false,
		Message: orDefault(message, "error"),
	})
}

func write(c *fiber.Ctx, status int, body Envelope) error {
	return c.Status(status).JSON(body)
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
