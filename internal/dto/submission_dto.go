package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted late_submitted"`
}

// SubmissionCreateRequest hands in work for an assignment. Resubmitting
// before grading replaces the stored file.
type SubmissionCreateRequest struct {
	FileURL  string `json:"file_url" validate:"required,url,max=512"`
	FileName string `json:"file_name" validate:"required,min=1,max=255"`
}

// GradeRequest is used by a teacher or admin to grade a submission.
type GradeRequest struct {
	Score    float64 `json:"score" validate:"gte=0"`
	Feedback string  `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
// Status carries the unified display status derived from the raw record;
// Late is the persistent badge that survives grading.
type SubmissionResponse struct {
	ID           uint                   `json:"id"`
	AssignmentID uint                   `json:"assignment_id"`
	StudentID    uint                   `json:"student_id"`
	FileURL      string                 `json:"file_url"`
	FileName     string                 `json:"file_name"`
	SubmittedAt  *time.Time             `json:"submitted_at"`
	RawStatus    string                 `json:"raw_status"`
	Status       derive.Status          `json:"status"`
	Late         bool                   `json:"late"`
	Score        *float64               `json:"score"`
	Feedback     string                 `json:"feedback"`
	GradedAt     *time.Time             `json:"graded_at"`
	GradedBy     *uint                  `json:"graded_by"`
	History      []GradeHistoryResponse `json:"history,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Assignment   AssignmentLite         `json:"assignment"`
	Student      UserLite               `json:"student"`
}

// GradeHistoryResponse serializes grading history entries.
type GradeHistoryResponse struct {
	Score    float64   `json:"score"`
	Feedback string    `json:"feedback"`
	GradedBy uint      `json:"graded_by"`
	GradedAt time.Time `json:"graded_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO, deriving the
// unified status against the assignment deadline at the supplied instant.
func NewSubmissionResponse(model models.Submission, now time.Time) SubmissionResponse {
	var dueDate *time.Time
	if model.Assignment.ID != 0 {
		dueDate = model.Assignment.DueDate
	}

	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		FileURL:      model.FileURL,
		FileName:     model.FileName,
		SubmittedAt:  model.SubmittedAt,
		RawStatus:    model.Status,
		Status:       derive.Classify(&model, dueDate, now),
		Late:         derive.WasLate(&model, dueDate),
		Score:        model.Score,
		Feedback:     model.Feedback,
		GradedAt:     model.GradedAt,
		GradedBy:     model.GradedBy,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:       model.Assignment.ID,
			Title:    model.Assignment.Title,
			DueDate:  model.Assignment.DueDate,
			MaxScore: model.Assignment.MaxScore,
		}
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	if len(model.History) > 0 {
		history := make([]GradeHistoryResponse, 0, len(model.History))
		for _, entry := range model.History {
			history = append(history, GradeHistoryResponse{
				Score:    entry.Score,
				Feedback: entry.Feedback,
				GradedBy: entry.GradedBy,
				GradedAt: entry.GradedAt,
			})
		}
		response.History = history
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission, now time.Time) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, submission := range items {
		responses = append(responses, NewSubmissionResponse(submission, now))
	}

	return responses
}
