package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// StudentHandler wires the student-facing aggregate views.
type StudentHandler struct {
	assignments service.StudentAssignmentService
	logger      zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(assignments service.StudentAssignmentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		assignments: assignments,
		logger:      logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student endpoints to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/assignments", h.listAssignments)
}

func (h *StudentHandler) listAssignments(c *fiber.Ctx) error {
	response, err := h.assignments.List(c.Context(), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build student assignment list")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assignments")
	}

	return utils.SendSuccess(c, "assignments retrieved", response)
}
