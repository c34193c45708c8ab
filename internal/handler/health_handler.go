package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tdnguyen-dev/classroom-go-api/internal/config"
	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

var startedAt = time.Now()

// HealthResponse reports liveness plus basic service identity.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// HealthCheck builds the liveness endpoint handler.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "service healthy", HealthResponse{
			Status:        "ok",
			Timestamp:     time.Now().UTC(),
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		})
	}
}
