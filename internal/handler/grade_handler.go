package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/middleware"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// GradeHandler wires the grading and submission detail endpoints.
type GradeHandler struct {
	grading     service.GradingService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grading service.GradingService, submissions service.SubmissionService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		grading:     grading,
		submissions: submissions,
		logger:      logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches submission detail and grading endpoints.
func (h *GradeHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	router.Get("/:id", h.get)
	router.Patch("/:id/grade", teacherOnly, h.grade)
}

func (h *GradeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submission, err := h.submissions.Get(c.Context(), id, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrSubmissionForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "submission access denied")
		default:
			h.logger.Error().Err(err).Uint("submission_id", id).Msg("failed to load submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submission")
		}
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.grading.Grade(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrGradeForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "grading access denied")
		case errors.Is(err, service.ErrScoreExceedsMax):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("submission_id", id).Msg("failed to grade submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade submission")
		}
	}

	return utils.SendSuccess(c, "submission graded", submission)
}
