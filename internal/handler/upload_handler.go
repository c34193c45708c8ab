package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// UploadHandler wires the file upload endpoint.
type UploadHandler struct {
	uploads service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(uploads service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register attaches the upload endpoint to the router group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	var userID *uint
	if id := userIDFromContext(c); id > 0 {
		userID = &id
	}

	response, err := h.uploads.Upload(c.Context(), file, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type not allowed")
		case errors.Is(err, service.ErrUploadMimeMismatch):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file content does not match extension")
		case errors.Is(err, service.ErrUploadScanFailed):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "file failed validation")
		default:
			h.logger.Error().Err(err).Msg("failed to store upload")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to store upload")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "file uploaded", response)
}
