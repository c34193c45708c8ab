package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment was not located.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService encapsulates assignment lifecycle workflows.
type AssignmentService interface {
	ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error)
	ListWithFilter(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, dto.PaginationMeta, error)
	Get(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, classID uint, actor ActivityActor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, assignmentID uint, actor ActivityActor, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, assignmentID uint, actor ActivityActor) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	invalidator CacheInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service. Descriptions may
// carry limited formatting, so the UGC policy applies rather than the strict
// one.
func NewAssignmentService(assignments repository.AssignmentRepository, classes repository.ClassRepository, validate *validator.Validate, activity ActivityRecorder, invalidator CacheInvalidator, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		classes:     classes,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		activity:    activity,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) ListWithFilter(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, dto.PaginationMeta, error) {
	assignments, total, err := s.assignments.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	meta := dto.PaginationMeta{
		Page:       maxInt(filter.Page, 1),
		PageSize:   filter.PageSize,
		TotalItems: total,
	}
	if filter.PageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(filter.PageSize)))
	} else {
		meta.TotalPages = 1
	}

	return dto.NewAssignmentResponseSlice(assignments), meta, nil
}

func (s *assignmentService) Get(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, classID uint, actor ActivityActor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.authorizeClass(class, actor); err != nil {
		return dto.AssignmentResponse{}, err
	}
	if class.IsArchived() {
		return dto.AssignmentResponse{}, ErrClassArchived
	}

	assignment := models.Assignment{
		ClassID:       classID,
		Title:         strings.TrimSpace(payload.Title),
		Description:   s.sanitizer.Sanitize(payload.Description),
		AttachmentURL: strings.TrimSpace(payload.AttachmentURL),
		DueDate:       payload.DueDate,
		MaxScore:      models.DefaultMaxScore,
	}
	if payload.MaxScore != nil {
		assignment.MaxScore = *payload.MaxScore
	}
	if payload.AllowLate != nil {
		assignment.AllowLate = *payload.AllowLate
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "assignment.created",
			EntityType: "assignment",
			EntityID:   &assignment.ID,
			Metadata:   map[string]interface{}{"class_id": classID, "title": assignment.Title},
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, classID)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, assignmentID uint, actor ActivityActor, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, class, err := s.loadWithClass(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.authorizeClass(class, actor); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.AttachmentURL != nil {
		assignment.AttachmentURL = strings.TrimSpace(*payload.AttachmentURL)
	}
	if payload.DueDate != nil {
		assignment.DueDate = payload.DueDate
	}
	if payload.MaxScore != nil {
		assignment.MaxScore = *payload.MaxScore
	}
	if payload.AllowLate != nil {
		assignment.AllowLate = *payload.AllowLate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "assignment.updated",
			EntityType: "assignment",
			EntityID:   &assignment.ID,
			Metadata:   map[string]interface{}{"class_id": assignment.ClassID},
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, assignment.ClassID)
		s.invalidator.InvalidateAssignmentStats(ctx, assignment.ID)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, assignmentID uint, actor ActivityActor) error {
	assignment, class, err := s.loadWithClass(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := s.authorizeClass(class, actor); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "assignment.deleted",
			EntityType: "assignment",
			EntityID:   &assignmentID,
			Metadata:   map[string]interface{}{"class_id": assignment.ClassID, "title": assignment.Title},
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, assignment.ClassID)
		s.invalidator.InvalidateAssignmentStats(ctx, assignmentID)
	}

	return nil
}

func (s *assignmentService) loadWithClass(ctx context.Context, assignmentID uint) (models.Assignment, models.Class, error) {
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

func (s *assignmentService) authorizeClass(class models.Class, actor ActivityActor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if class.TeacherID != actor.ID {
		return ErrNotClassOwner
	}
	return nil
}
