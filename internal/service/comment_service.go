package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ErrCommentEmpty indicates the comment body was empty after sanitization.
var ErrCommentEmpty = errors.New("comment body empty after sanitization")

// CommentService encapsulates the feedback thread on a submission.
type CommentService interface {
	ListForSubmission(ctx context.Context, submissionID uint, actor ActivityActor) ([]dto.CommentResponse, error)
	Create(ctx context.Context, actor ActivityActor, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
}

type commentService struct {
	comments    repository.CommentRepository
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewCommentService constructs the comment service. Bodies pass through the
// strict policy: plain text only.
func NewCommentService(comments repository.CommentRepository, submissions repository.SubmissionRepository, classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) CommentService {
	return &commentService{
		comments:    comments,
		submissions: submissions,
		classes:     classes,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "comment_service").Logger(),
	}
}

func (s *commentService) ListForSubmission(ctx context.Context, submissionID uint, actor ActivityActor) ([]dto.CommentResponse, error) {
	if err := s.authorizeThread(ctx, submissionID, actor); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return dto.NewCommentResponseSlice(comments), nil
}

func (s *commentService) Create(ctx context.Context, actor ActivityActor, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	if err := s.authorizeThread(ctx, payload.SubmissionID, actor); err != nil {
		return dto.CommentResponse{}, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return dto.CommentResponse{}, ErrCommentEmpty
	}

	comment := models.Comment{
		SubmissionID: payload.SubmissionID,
		AuthorID:     actor.ID,
		Body:         body,
	}

	if err := s.comments.Create(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	return dto.NewCommentResponse(comment), nil
}

// authorizeThread limits a thread to the submitting student, the class
// owner and admins.
func (s *commentService) authorizeThread(ctx context.Context, submissionID uint, actor ActivityActor) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if actor.Role == models.RoleAdmin || submission.StudentID == actor.ID {
		return nil
	}

	class, err := s.classes.GetByID(ctx, submission.Assignment.ClassID)
	if err != nil {
		return err
	}
	if class.TeacherID == actor.ID {
		return nil
	}

	return ErrSubmissionForbidden
}
