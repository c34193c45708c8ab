package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ErrUserNotFound indicates the account was not located.
var ErrUserNotFound = errors.New("user not found")

// ErrSelfDeactivation indicates an admin tried to deactivate themselves.
var ErrSelfDeactivation = errors.New("cannot change own account status")

// AdminUserService encapsulates account administration. Admins toggle
// lifecycle status only; profile fields belong to the account owner.
type AdminUserService interface {
	List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	UpdateStatus(ctx context.Context, userID uint, actor ActivityActor, payload dto.AdminUserUpdateRequest) (dto.AdminUserResponse, error)
}

type adminUserService struct {
	users     repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewAdminUserService constructs the account administration service.
func NewAdminUserService(users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		users:     users,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminUserListResponse{}, err
	}

	filter := repository.UserFilter{
		Search:   req.Search,
		Role:     req.Role,
		Status:   req.Status,
		Sort:     normalizeUserSortRequest(req.SortBy, req.SortDir),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	meta := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		meta.TotalPages = 1
	}

	return dto.AdminUserListResponse{
		Items: dto.NewAdminUserResponseSlice(users),
		Meta:  meta,
	}, nil
}

func (s *adminUserService) UpdateStatus(ctx context.Context, userID uint, actor ActivityActor, payload dto.AdminUserUpdateRequest) (dto.AdminUserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminUserResponse{}, err
	}

	if userID == actor.ID {
		return dto.AdminUserResponse{}, ErrSelfDeactivation
	}

	user, err := s.users.UpdateStatus(ctx, userID, payload.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminUserResponse{}, ErrUserNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "user.status_changed",
			EntityType: "user",
			EntityID:   &userID,
			Metadata:   map[string]interface{}{"status": payload.Status},
		})
	}

	s.logger.Info().Uint("user_id", userID).Str("status", payload.Status).Msg("user status updated")

	return dto.NewAdminUserResponse(user), nil
}

func normalizeUserSortRequest(sortBy, sortDir string) string {
	if sortBy == "" {
		return ""
	}
	if sortDir == "desc" {
		return "-" + sortBy
	}
	return sortBy
}
