package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// ClassFilter describes listing options for classes.
type ClassFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}

// ClassRepository defines persistence operations for classes and membership.
type ClassRepository interface {
	List(ctx context.Context, filter ClassFilter) ([]models.Class, int64, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)
	ListByMember(ctx context.Context, studentID uint) ([]models.Class, error)
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByCode(ctx context.Context, code string) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id uint) error
	AddMember(ctx context.Context, classID uint, student *models.User) error
	ListMembers(ctx context.Context, classID uint) ([]models.User, error)
	IsMember(ctx context.Context, classID, studentID uint) (bool, error)
	CountMembers(ctx context.Context, classID uint) (int64, error)
	CountAssignments(ctx context.Context, classID uint) (int64, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) List(ctx context.Context, filter ClassFilter) ([]models.Class, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Class{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToLower(strings.TrimSpace(filter.Status)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var classes []models.Class
	if err := query.Preload("Teacher").Order("created_at DESC").Find(&classes).Error; err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepository) ListByMember(ctx context.Context, studentID uint) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Joins("JOIN class_members ON class_members.class_id = classes.id").
		Where("class_members.user_id = ?", studentID).
		Order("classes.created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) GetByCode(ctx context.Context, code string) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&class).Error
	if err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Class{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *classRepository) AddMember(ctx context.Context, classID uint, student *models.User) error {
	class := models.Class{ID: classID}
	return r.db.WithContext(ctx).Model(&class).Association("Members").Append(student)
}

func (r *classRepository) ListMembers(ctx context.Context, classID uint) ([]models.User, error) {
	class := models.Class{ID: classID}
	var members []models.User
	err := r.db.WithContext(ctx).Model(&class).Association("Members").Find(&members)
	return members, err
}

func (r *classRepository) IsMember(ctx context.Context, classID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("class_members").
		Where("class_id = ? AND user_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *classRepository) CountMembers(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("class_members").
		Where("class_id = ?", classID).
		Count(&count).Error
	return count, err
}

func (r *classRepository) CountAssignments(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("class_id = ?", classID).
		Count(&count).Error
	return count, err
}
