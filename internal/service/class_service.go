package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ErrClassNotFound indicates the class was not located.
var ErrClassNotFound = errors.New("class not found")

// ErrClassCodeNotFound indicates no class matches the supplied join code.
var ErrClassCodeNotFound = errors.New("class code not found")

// ErrClassArchived indicates the class is read-only and rejects the change.
var ErrClassArchived = errors.New("class is archived")

// ErrNotClassOwner indicates the caller does not own the class.
var ErrNotClassOwner = errors.New("caller does not own this class")

// ErrAlreadyMember indicates the student already joined the class.
var ErrAlreadyMember = errors.New("student is already a member")

// ErrTeacherCannotJoin indicates a join attempt by the class owner.
var ErrTeacherCannotJoin = errors.New("class owner cannot join as member")

const joinCodeLength = 8

// ClassService encapsulates class lifecycle and membership workflows.
type ClassService interface {
	List(ctx context.Context, filter repository.ClassFilter) ([]dto.ClassResponse, dto.PaginationMeta, error)
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.ClassResponse, error)
	Get(ctx context.Context, classID uint) (dto.ClassResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Update(ctx context.Context, classID uint, actor ActivityActor, payload dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, classID uint, actor ActivityActor) error
	Join(ctx context.Context, studentID uint, payload dto.ClassJoinRequest) (dto.ClassResponse, error)
	Members(ctx context.Context, classID uint) ([]dto.UserLite, error)
}

type classService struct {
	classes     repository.ClassRepository
	users       repository.UserRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	invalidator CacheInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewClassService constructs the class service.
func NewClassService(classes repository.ClassRepository, users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, invalidator CacheInvalidator, logger zerolog.Logger) ClassService {
	return &classService{
		classes:     classes,
		users:       users,
		validator:   validate,
		activity:    activity,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "class_service").Logger(),
		now:         time.Now,
	}
}

func (s *classService) List(ctx context.Context, filter repository.ClassFilter) ([]dto.ClassResponse, dto.PaginationMeta, error) {
	classes, total, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	responses, err := s.toResponses(ctx, classes)
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

	return responses, meta, nil
}

func (s *classService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return s.toResponses(ctx, classes)
}

func (s *classService) ListForStudent(ctx context.Context, studentID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByMember(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return s.toResponses(ctx, classes)
}

func (s *classService) Get(ctx context.Context, classID uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return s.toResponse(ctx, class)
}

func (s *classService) Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Name:        strings.TrimSpace(payload.Name),
		Code:        newJoinCode(),
		Description: strings.TrimSpace(payload.Description),
		TeacherID:   teacherID,
		Status:      models.ClassStatusActive,
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    teacherID,
			ActorRole:  models.RoleTeacher,
			Action:     "class.created",
			EntityType: "class",
			EntityID:   &class.ID,
			Metadata:   map[string]interface{}{"name": class.Name},
		})
	}

	return dto.NewClassResponse(class, 0, 0), nil
}

func (s *classService) Update(ctx context.Context, classID uint, actor ActivityActor, payload dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if err := s.authorizeOwner(class, actor); err != nil {
		return dto.ClassResponse{}, err
	}

	if payload.Name != nil {
		class.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		class.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Status != nil {
		class.Status = strings.ToLower(strings.TrimSpace(*payload.Status))
	}

	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "class.updated",
			EntityType: "class",
			EntityID:   &class.ID,
			Metadata:   map[string]interface{}{"status": class.Status},
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, class.ID)
	}

	return s.toResponse(ctx, class)
}

func (s *classService) Delete(ctx context.Context, classID uint, actor ActivityActor) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	if err := s.authorizeOwner(class, actor); err != nil {
		return err
	}

	if err := s.classes.Delete(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "class.deleted",
			EntityType: "class",
			EntityID:   &classID,
			Metadata:   map[string]interface{}{"name": class.Name},
		})
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, classID)
	}

	return nil
}

func (s *classService) Join(ctx context.Context, studentID uint, payload dto.ClassJoinRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByCode(ctx, payload.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassCodeNotFound
		}
		return dto.ClassResponse{}, err
	}

	if class.IsArchived() {
		return dto.ClassResponse{}, ErrClassArchived
	}
	if class.TeacherID == studentID {
		return dto.ClassResponse{}, ErrTeacherCannotJoin
	}

	member, err := s.classes.IsMember(ctx, class.ID, studentID)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	if member {
		return dto.ClassResponse{}, ErrAlreadyMember
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	if err := s.classes.AddMember(ctx, class.ID, &student); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("student_id", studentID).Msg("student joined class")

	if s.invalidator != nil {
		s.invalidator.InvalidateGradebook(ctx, class.ID)
	}

	return s.toResponse(ctx, class)
}

func (s *classService) Members(ctx context.Context, classID uint) ([]dto.UserLite, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	members, err := s.classes.ListMembers(ctx, classID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserLite, 0, len(members))
	for _, member := range members {
		responses = append(responses, dto.UserLite{
			ID:    member.ID,
			Name:  member.Name,
			Email: member.Email,
		})
	}

	return responses, nil
}

// authorizeOwner allows the owning teacher or any admin to mutate a class.
func (s *classService) authorizeOwner(class models.Class, actor ActivityActor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if class.TeacherID != actor.ID {
		return ErrNotClassOwner
	}
	return nil
}

func (s *classService) toResponse(ctx context.Context, class models.Class) (dto.ClassResponse, error) {
	memberCount, err := s.classes.CountMembers(ctx, class.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	assignmentCount, err := s.classes.CountAssignments(ctx, class.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class, memberCount, assignmentCount), nil
}

func (s *classService) toResponses(ctx context.Context, classes []models.Class) ([]dto.ClassResponse, error) {
	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		response, err := s.toResponse(ctx, class)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return responses, nil
}

// newJoinCode derives a short join token from a v4 UUID. Codes are stored
// uppercase and compared case-insensitively at redemption.
func newJoinCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:joinCodeLength])
}
