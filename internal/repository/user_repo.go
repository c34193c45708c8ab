package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// UserFilter describes admin-facing search, filter and pagination options.
type UserFilter struct {
	Search   string
	Role     string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id uint, status string) (models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", strings.ToLower(strings.TrimSpace(filter.Role)))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToLower(strings.TrimSpace(filter.Status)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(normalizeUserSort(filter.Sort))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uint, status string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	user.Status = status
	if err := r.db.WithContext(ctx).Save(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func normalizeUserSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "name", "name:asc":
		return "name ASC"
	case "-name", "name:desc":
		return "name DESC"
	case "email", "email:asc":
		return "email ASC"
	case "-email", "email:desc":
		return "email DESC"
	case "-created_at", "created_at:desc":
		return "created_at DESC"
	default:
		return "created_at ASC"
	}
}
