package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// AdminHandler wires the admin console endpoints: user administration,
// class oversight, platform stats, CSV reports and the audit trail.
type AdminHandler struct {
	users    service.AdminUserService
	classes  service.ClassService
	stats    service.AdminStatsService
	reports  service.ReportService
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(users service.AdminUserService, classes service.ClassService, stats service.AdminStatsService, reports service.ReportService, activity service.ActivityService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		users:    users,
		classes:  classes,
		stats:    stats,
		reports:  reports,
		activity: activity,
		logger:   logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches admin endpoints to the router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Patch("/users/:id", h.updateUserStatus)
	router.Get("/classes", h.listClasses)
	router.Get("/stats", h.summary)
	router.Get("/reports/users", h.exportUsers)
	router.Get("/reports/classes", h.exportClasses)
	router.Get("/reports/gradebook/:classID", h.exportGradebook)
	router.Get("/activity-logs", h.listActivity)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	var req dto.AdminUserListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.users.List(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *AdminHandler) updateUserStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AdminUserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateStatus(c.Context(), id, activityActorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrSelfDeactivation):
			return utils.SendError(c, fiber.StatusConflict, "cannot change own account status")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("user_id", id).Msg("failed to update user status")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user status")
		}
	}

	return utils.SendSuccess(c, "user status updated", user)
}

func (h *AdminHandler) listClasses(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	filter := repository.ClassFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}

	classes, meta, err := h.classes.List(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes retrieved", fiber.Map{"items": classes, "meta": meta})
}

func (h *AdminHandler) summary(c *fiber.Ctx) error {
	stats, err := h.stats.Summary(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build platform stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build platform stats")
	}

	return utils.SendSuccess(c, "platform stats retrieved", stats)
}

func (h *AdminHandler) exportUsers(c *fiber.Ctx) error {
	payload, fileName, err := h.reports.ExportUsers(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to export users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export users")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(payload)
}

func (h *AdminHandler) exportClasses(c *fiber.Ctx) error {
	payload, fileName, err := h.reports.ExportClasses(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to export classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export classes")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(payload)
}

func (h *AdminHandler) exportGradebook(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "classID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	payload, fileName, err := h.reports.ExportGradebook(c.Context(), classID)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		h.logger.Error().Err(err).Uint("class_id", classID).Msg("failed to export gradebook")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export gradebook")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(payload)
}

func (h *AdminHandler) listActivity(c *fiber.Ctx) error {
	var req dto.ActivityLogListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.activity.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs retrieved", response)
}
