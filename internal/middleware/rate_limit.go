package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// RateLimit throttles write endpoints per authenticated user. Keys combine
// the route identifier with the caller's user id, falling back to the client
// IP for unauthenticated traffic.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return identifier + ":" + callerKey(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}

func callerKey(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(uint); ok && id != 0 {
		return fmt.Sprintf("user:%d", id)
	}
	return "ip:" + c.IP()
}
