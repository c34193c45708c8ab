package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// SubmissionFilter describes listing options for submissions.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Status       *string
	Graded       *bool
}

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByPair(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	AppendHistory(ctx context.Context, entry *models.SubmissionGradeEntry) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Graded != nil {
		if *filter.Graded {
			query = query.Where("score IS NOT NULL")
		} else {
			query = query.Where("score IS NULL")
		}
	}

	var submissions []models.Submission
	err := query.
		Preload("Assignment").
		Preload("Student").
		Order("updated_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Student").
		Preload("History").
		First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByPair(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) AppendHistory(ctx context.Context, entry *models.SubmissionGradeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
