package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// CommentRepository defines persistence operations for submission comments.
type CommentRepository interface {
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository instantiates a GORM-backed repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Preload("Author").
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
