package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/observability"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrNotClassMember indicates the student has not joined the class.
var ErrNotClassMember = errors.New("student is not a class member")

// ErrDeadlinePassed indicates late work is not accepted for the assignment.
var ErrDeadlinePassed = errors.New("deadline passed and late work is not accepted")

// ErrResubmitAfterGrading indicates the submission is already graded and
// can no longer be replaced.
var ErrResubmitAfterGrading = errors.New("submission already graded")

// ErrSubmissionForbidden indicates the caller may not view this submission.
var ErrSubmissionForbidden = errors.New("submission access denied")

// SubmissionService encapsulates hand-in and review workflows.
type SubmissionService interface {
	ListForAssignment(ctx context.Context, assignmentID uint, actor ActivityActor) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, submissionID uint, actor ActivityActor) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, assignmentID, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Stats(ctx context.Context, assignmentID uint) (dto.AssignmentStatsResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	events      EventPublisher
	invalidator CacheInvalidator
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, classes repository.ClassRepository, validate *validator.Validate, events EventPublisher, invalidator CacheInvalidator, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		classes:     classes,
		validator:   validate,
		events:      events,
		invalidator: invalidator,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/tdnguyen-dev/classroom-go-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint, actor ActivityActor) ([]dto.SubmissionResponse, error) {
	assignment, class, err := s.loadAssignmentClass(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleAdmin && class.TeacherID != actor.ID {
		return nil, ErrSubmissionForbidden
	}

	filter := repository.SubmissionFilter{AssignmentID: &assignment.ID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions, s.now()), nil
}

func (s *submissionService) Get(ctx context.Context, submissionID uint, actor ActivityActor) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.authorizeView(ctx, submission, actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission, s.now()), nil
}

func (s *submissionService) Submit(ctx context.Context, assignmentID, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.submit", trace.WithAttributes(
		attribute.Int64("submission.assignment_id", int64(assignmentID)),
		attribute.Int64("submission.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, class, err := s.loadAssignmentClass(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if class.IsArchived() {
		return dto.SubmissionResponse{}, ErrClassArchived
	}

	member, err := s.classes.IsMember(ctx, class.ID, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !member {
		return dto.SubmissionResponse{}, ErrNotClassMember
	}

	now := s.now()
	late := assignment.IsPastDue(now)
	if late && !assignment.AllowLate {
		span.SetStatus(codes.Error, "deadline_passed")
		return dto.SubmissionResponse{}, ErrDeadlinePassed
	}

	status := models.SubmissionStatusSubmitted
	if late {
		status = models.SubmissionStatusLateSubmitted
	}

	submission, err := s.submissions.GetByPair(ctx, assignmentID, studentID)
	switch {
	case err == nil:
		if submission.IsGraded() {
			return dto.SubmissionResponse{}, ErrResubmitAfterGrading
		}
		submission.FileURL = strings.TrimSpace(payload.FileURL)
		submission.FileName = strings.TrimSpace(payload.FileName)
		submission.SubmittedAt = &now
		submission.Status = status
		if err := s.submissions.Update(ctx, &submission); err != nil {
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		submission = models.Submission{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			FileURL:      strings.TrimSpace(payload.FileURL),
			FileName:     strings.TrimSpace(payload.FileName),
			SubmittedAt:  &now,
			Status:       status,
		}
		if err := s.submissions.Create(ctx, &submission); err != nil {
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
	default:
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.String("submission.status", status))

	if s.events != nil {
		s.events.PublishSubmissionEvent(SubjectSubmissionCreated, SubmissionEvent{
			SubmissionID: submission.ID,
			AssignmentID: assignmentID,
			ClassID:      class.ID,
			StudentID:    studentID,
			Status:       status,
			OccurredAt:   now.UTC(),
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, class.ID)
		s.invalidator.InvalidateAssignmentStats(ctx, assignmentID)
		s.invalidator.InvalidateAdminSummary(ctx)
	}

	submission.Assignment = assignment
	return dto.NewSubmissionResponse(submission, now), nil
}

func (s *submissionService) Stats(ctx context.Context, assignmentID uint) (dto.AssignmentStatsResponse, error) {
	cacheKey := fmt.Sprintf(assignmentStatsKeyFormat, assignmentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AssignmentStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CacheLookups().WithLabelValues("assignment_stats", "hit").Inc()
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read assignment stats cache")
		}
		observability.CacheLookups().WithLabelValues("assignment_stats", "miss").Inc()
	}

	assignment, class, err := s.loadAssignmentClass(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentStatsResponse{}, err
	}

	members, err := s.classes.ListMembers(ctx, class.ID)
	if err != nil {
		return dto.AssignmentStatsResponse{}, err
	}
	memberIDs := make([]uint, 0, len(members))
	for _, member := range members {
		memberIDs = append(memberIDs, member.ID)
	}

	filter := repository.SubmissionFilter{AssignmentID: &assignmentID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.AssignmentStatsResponse{}, err
	}

	response := dto.AssignmentStatsResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		Scores:     derive.ScoreStatsFor(submissions),
		Counts:     derive.CountStatuses(assignment, memberIDs, submissions, s.now()),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store assignment stats cache")
			}
		}
	}

	return response, nil
}

func (s *submissionService) loadAssignmentClass(ctx context.Context, assignmentID uint) (models.Assignment, models.Class, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, models.Class{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, models.Class{}, err
	}

	class, err := s.classes.GetByID(ctx, assignment.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, models.Class{}, ErrClassNotFound
		}
		return models.Assignment{}, models.Class{}, err
	}

	return assignment, class, nil
}

// authorizeView grants access to the submitting student, the class owner
// and admins.
func (s *submissionService) authorizeView(ctx context.Context, submission models.Submission, actor ActivityActor) error {
	if actor.Role == models.RoleAdmin || submission.StudentID == actor.ID {
		return nil
	}

	_, class, err := s.loadAssignmentClass(ctx, submission.AssignmentID)
	if err != nil {
		return err
	}
	if class.TeacherID == actor.ID {
		return nil
	}

	return ErrSubmissionForbidden
}
