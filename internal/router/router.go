package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tdnguyen-dev/classroom-go-api/internal/config"
	"github.com/tdnguyen-dev/classroom-go-api/internal/handler"
	"github.com/tdnguyen-dev/classroom-go-api/internal/middleware"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler      *handler.ClassHandler
	AssignmentHandler *handler.AssignmentHandler
	GradeHandler      *handler.GradeHandler
	StudentHandler    *handler.StudentHandler
	CommentHandler    *handler.CommentHandler
	UploadHandler     *handler.UploadHandler
	AdminHandler      *handler.AdminHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	writeLimit := middleware.RateLimit("write", cfg.WriteRateLimit, cfg.WriteRateWindow)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware)
		deps.ClassHandler.Register(classes)
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterClassScoped(classes)
		}
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.GradeHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.GradeHandler.Register(submissions)
	}

	if deps.StudentHandler != nil {
		student := api.Group("/student", jwtMiddleware)
		deps.StudentHandler.Register(student)
	}

	if deps.CommentHandler != nil {
		comments := api.Group("/comments", jwtMiddleware, writeLimit)
		deps.CommentHandler.Register(comments)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/upload", jwtMiddleware, writeLimit)
		deps.UploadHandler.Register(uploads)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, adminOnly)
		deps.AdminHandler.Register(admin)
	}
}
