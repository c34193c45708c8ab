package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// CommentHandler wires the submission feedback thread endpoints.
type CommentHandler struct {
	comments service.CommentService
	logger   zerolog.Logger
}

// NewCommentHandler constructs the handler.
func NewCommentHandler(comments service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger.With().Str("component", "comment_handler").Logger(),
	}
}

// Register attaches comment endpoints to the router group.
func (h *CommentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
}

func (h *CommentHandler) list(c *fiber.Ctx) error {
	submissionID, err := parseQueryUint(c, "submission_id")
	if err != nil || submissionID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "submission_id is required")
	}

	comments, err := h.comments.ListForSubmission(c.Context(), *submissionID, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrSubmissionForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "submission access denied")
		default:
			h.logger.Error().Err(err).Uint("submission_id", *submissionID).Msg("failed to list comments")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list comments")
		}
	}

	return utils.SendSuccess(c, "comments retrieved", comments)
}

func (h *CommentHandler) create(c *fiber.Ctx) error {
	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	comment, err := h.comments.Create(c.Context(), activityActorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrSubmissionForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "submission access denied")
		case errors.Is(err, service.ErrCommentEmpty):
			return utils.SendError(c, fiber.StatusBadRequest, "comment body is empty")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to create comment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create comment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment created", comment)
}
