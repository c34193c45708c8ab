package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// UploadRepository defines persistence operations for upload records.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	ListByUser(ctx context.Context, userID uint) ([]models.UploadRecord, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository instantiates a GORM-backed repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *uploadRepository) ListByUser(ctx context.Context, userID uint) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
