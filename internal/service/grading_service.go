package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ErrScoreExceedsMax indicates a grading score surpasses the assignment max.
var ErrScoreExceedsMax = errors.New("score exceeds assignment max")

// ErrGradeForbidden indicates the caller may not grade this submission.
var ErrGradeForbidden = errors.New("grading access denied")

// GradingService encapsulates the grading workflow for teachers and admins.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint, payload dto.GradeRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	invalidator CacheInvalidator
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, classes repository.ClassRepository, validate *validator.Validate, activity ActivityRecorder, events EventPublisher, invalidator CacheInvalidator, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		classes:     classes,
		validator:   validate,
		activity:    activity,
		events:      events,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/tdnguyen-dev/classroom-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID uint, payload dto.GradeRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update", trace.WithAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, submission.Assignment.ClassID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if actor.Role != models.RoleAdmin && class.TeacherID != actor.ID {
		span.SetStatus(codes.Error, "grading_forbidden")
		return dto.SubmissionResponse{}, ErrGradeForbidden
	}

	maxScore := submission.Assignment.MaxScore
	if maxScore <= 0 {
		maxScore = models.DefaultMaxScore
	}
	if payload.Score > maxScore+1e-9 {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, ErrScoreExceedsMax
	}

	feedback := strings.TrimSpace(payload.Feedback)

	// Re-grading with identical values by the same actor is a no-op.
	if submission.Score != nil &&
		math.Abs(*submission.Score-payload.Score) < 1e-6 &&
		strings.TrimSpace(submission.Feedback) == feedback &&
		submission.GradedBy != nil && *submission.GradedBy == actor.ID {
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission, s.now()), nil
	}

	score := payload.Score
	gradedAt := s.now()
	gradedBy := actor.ID
	submission.Score = &score
	submission.Feedback = feedback
	submission.GradedAt = &gradedAt
	submission.GradedBy = &gradedBy

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	entry := models.SubmissionGradeEntry{
		SubmissionID: submission.ID,
		Score:        score,
		Feedback:     feedback,
		GradedBy:     gradedBy,
		GradedAt:     gradedAt,
	}
	if err := s.submissions.AppendHistory(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist grading history")
		span.RecordError(err)
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"student_id":    submission.StudentID,
				"score":         score,
			},
		})
	}

	if s.events != nil {
		s.events.PublishSubmissionEvent(SubjectSubmissionGraded, SubmissionEvent{
			SubmissionID: submission.ID,
			AssignmentID: submission.AssignmentID,
			ClassID:      class.ID,
			StudentID:    submission.StudentID,
			Status:       submission.Status,
			Score:        &score,
			OccurredAt:   gradedAt.UTC(),
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, class.ID)
		s.invalidator.InvalidateAssignmentStats(ctx, submission.AssignmentID)
		s.invalidator.InvalidateAdminSummary(ctx)
	}

	span.SetAttributes(attribute.Float64("grading.score", score))

	return dto.NewSubmissionResponse(submission, s.now()), nil
}
