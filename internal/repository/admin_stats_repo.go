package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// AdminStatsRepository supplies data for platform-wide statistics.
type AdminStatsRepository interface {
	CountUsersByRole(ctx context.Context, role string) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
	CountClasses(ctx context.Context, status string) (int64, error)
	ListSubmissionsWithAssignments(ctx context.Context) ([]models.Submission, error)
	ListSubmissionsSince(ctx context.Context, since time.Time) ([]models.Submission, error)
}

type adminStatsRepository struct {
	db *gorm.DB
}

// NewAdminStatsRepository constructs the statistics repository.
func NewAdminStatsRepository(db *gorm.DB) AdminStatsRepository {
	return &adminStatsRepository{db: db}
}

func (r *adminStatsRepository) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func (r *adminStatsRepository) CountActiveUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("status = ?", models.UserStatusActive).
		Count(&count).Error
	return count, err
}

func (r *adminStatsRepository) CountClasses(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Class{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *adminStatsRepository) ListSubmissionsWithAssignments(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Find(&submissions).Error
	return submissions, err
}

func (r *adminStatsRepository) ListSubmissionsSince(ctx context.Context, since time.Time) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Preload("Assignment").
		Find(&submissions).Error
	return submissions, err
}
