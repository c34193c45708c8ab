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

// ClassHandler wires class lifecycle and membership endpoints.
type ClassHandler struct {
	classes   service.ClassService
	gradebook service.GradebookService
	reports   service.ReportService
	logger    zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(classes service.ClassService, gradebook service.GradebookService, reports service.ReportService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classes:   classes,
		gradebook: gradebook,
		reports:   reports,
		logger:    logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register attaches class endpoints to the router group. Mutations and
// teacher views carry a role gate; ownership is enforced in the service.
func (h *ClassHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	router.Get("/", h.list)
	router.Post("/", teacherOnly, h.create)
	router.Post("/join", studentOnly, h.join)
	router.Get("/:id", h.get)
	router.Put("/:id", teacherOnly, h.update)
	router.Delete("/:id", teacherOnly, h.delete)
	router.Get("/:id/members", teacherOnly, h.members)
	router.Get("/:id/gradebook", teacherOnly, h.getGradebook)
	router.Get("/:id/gradebook/export", teacherOnly, h.exportGradebook)
}

// list returns the classes visible to the caller: owned classes for
// teachers, joined classes for students.
func (h *ClassHandler) list(c *fiber.Ctx) error {
	actor := activityActorFromContext(c)

	var (
		classes []dto.ClassResponse
		err     error
	)
	switch actor.Role {
	case models.RoleTeacher, models.RoleAdmin:
		classes, err = h.classes.ListForTeacher(c.Context(), actor.ID)
	default:
		classes, err = h.classes.ListForStudent(c.Context(), actor.ID)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.classes.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create class")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) join(c *fiber.Ctx) error {
	var payload dto.ClassJoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.classes.Join(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassCodeNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class code not found")
		case errors.Is(err, service.ErrClassArchived):
			return utils.SendError(c, fiber.StatusConflict, "class is archived")
		case errors.Is(err, service.ErrAlreadyMember):
			return utils.SendError(c, fiber.StatusConflict, "already a member of this class")
		case errors.Is(err, service.ErrTeacherCannotJoin):
			return utils.SendError(c, fiber.StatusConflict, "class owner cannot join as member")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to join class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to join class")
		}
	}

	return utils.SendSuccess(c, "class joined", class)
}

func (h *ClassHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	class, err := h.classes.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		h.logger.Error().Err(err).Uint("class_id", id).Msg("failed to load class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load class")
	}

	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *ClassHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ClassUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.classes.Update(c.Context(), id, activityActorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, "not the class owner")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("class_id", id).Msg("failed to update class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update class")
		}
	}

	return utils.SendSuccess(c, "class updated", class)
}

func (h *ClassHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.classes.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, "not the class owner")
		default:
			h.logger.Error().Err(err).Uint("class_id", id).Msg("failed to delete class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete class")
		}
	}

	return utils.SendSuccess(c, "class deleted", nil)
}

func (h *ClassHandler) members(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	members, err := h.classes.Members(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		h.logger.Error().Err(err).Uint("class_id", id).Msg("failed to list members")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list members")
	}

	return utils.SendSuccess(c, "members retrieved", members)
}

func (h *ClassHandler) getGradebook(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	book, err := h.gradebook.Gradebook(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		h.logger.Error().Err(err).Uint("class_id", id).Msg("failed to build gradebook")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build gradebook")
	}

	return utils.SendSuccess(c, "gradebook retrieved", book)
}

func (h *ClassHandler) exportGradebook(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	payload, fileName, err := h.reports.ExportGradebook(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		h.logger.Error().Err(err).Uint("class_id", id).Msg("failed to export gradebook")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export gradebook")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(payload)
}
