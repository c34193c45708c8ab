package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// AssignmentFilter describes pagination & search options.
type AssignmentFilter struct {
	ClassID  *uint
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListByClass(ctx context.Context, classID uint) ([]models.Assignment, error)
	ListByClasses(ctx context.Context, classIDs []uint) ([]models.Assignment, error)
	ListWithFilter(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("due_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) ListByClasses(ctx context.Context, classIDs []uint) ([]models.Assignment, error) {
	if len(classIDs) == 0 {
		return []models.Assignment{}, nil
	}

	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Order("due_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) ListWithFilter(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(normalizeAssignmentSort(filter.Sort))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeAssignmentSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "due_date", "due_date:asc":
		return "due_date ASC"
	case "-due_date", "due_date:desc":
		return "due_date DESC"
	case "title", "title:asc":
		return "title ASC"
	case "-title", "title:desc":
		return "title DESC"
	case "-created_at", "created_at:desc":
		return "created_at DESC"
	default:
		return "due_date ASC"
	}
}
