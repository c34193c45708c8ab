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

// AssignmentHandler wires assignment lifecycle endpoints.
type AssignmentHandler struct {
	assignments service.AssignmentService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, submissions service.SubmissionService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// RegisterClassScoped attaches creation and listing under a class.
func (h *AssignmentHandler) RegisterClassScoped(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	router.Get("/:id/assignments", h.listByClass)
	router.Post("/:id/assignments", teacherOnly, h.create)
}

// Register attaches the assignment-rooted endpoints.
func (h *AssignmentHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	router.Get("/:id", h.get)
	router.Put("/:id", teacherOnly, h.update)
	router.Delete("/:id", teacherOnly, h.delete)
	router.Get("/:id/stats", teacherOnly, h.stats)
	router.Get("/:id/submissions", teacherOnly, h.listSubmissions)
	router.Post("/:id/submissions", studentOnly, h.submit)
}

func (h *AssignmentHandler) listByClass(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assignments, err := h.assignments.ListByClass(c.Context(), classID)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		h.logger.Error().Err(err).Uint("class_id", classID).Msg("failed to list assignments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assignments")
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.assignments.Create(c.Context(), classID, activityActorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, "not the class owner")
		case errors.Is(err, service.ErrClassArchived):
			return utils.SendError(c, fiber.StatusConflict, "class is archived")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("class_id", classID).Msg("failed to create assignment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create assignment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assignment, err := h.assignments.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to load assignment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load assignment")
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.assignments.Update(c.Context(), id, activityActorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, "not the class owner")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to update assignment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update assignment")
		}
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.assignments.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, "not the class owner")
		default:
			h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to delete assignment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete assignment")
		}
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) stats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	stats, err := h.submissions.Stats(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to build assignment stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build assignment stats")
	}

	return utils.SendSuccess(c, "assignment stats retrieved", stats)
}

func (h *AssignmentHandler) listSubmissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submissions, err := h.submissions.ListForAssignment(c.Context(), id, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrSubmissionForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "submission access denied")
		default:
			h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to list submissions")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list submissions")
		}
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *AssignmentHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.submissions.Submit(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrNotClassMember):
			return utils.SendError(c, fiber.StatusForbidden, "not a member of this class")
		case errors.Is(err, service.ErrClassArchived):
			return utils.SendError(c, fiber.StatusConflict, "class is archived")
		case errors.Is(err, service.ErrDeadlinePassed):
			return utils.SendError(c, fiber.StatusConflict, "deadline passed and late work is not accepted")
		case errors.Is(err, service.ErrResubmitAfterGrading):
			return utils.SendError(c, fiber.StatusConflict, "submission already graded")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to submit work")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit work")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}
