package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
// A nil DueDate means the assignment has no deadline.
type AssignmentCreateRequest struct {
	Title         string     `json:"title" validate:"required,min=2,max=255"`
	Description   string     `json:"description" validate:"omitempty,max=10000"`
	AttachmentURL string     `json:"attachment_url" validate:"omitempty,url,max=512"`
	DueDate       *time.Time `json:"due_date"`
	MaxScore      *float64   `json:"max_score" validate:"omitempty,gt=0,lte=1000"`
	AllowLate     *bool      `json:"allow_late"`
}

// AssignmentUpdateRequest edits an existing assignment.
type AssignmentUpdateRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=2,max=255"`
	Description   *string    `json:"description" validate:"omitempty,max=10000"`
	AttachmentURL *string    `json:"attachment_url" validate:"omitempty,url,max=512"`
	DueDate       *time.Time `json:"due_date"`
	MaxScore      *float64   `json:"max_score" validate:"omitempty,gt=0,lte=1000"`
	AllowLate     *bool      `json:"allow_late"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID            uint       `json:"id"`
	ClassID       uint       `json:"class_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AttachmentURL string     `json:"attachment_url"`
	DueDate       *time.Time `json:"due_date"`
	MaxScore      float64    `json:"max_score"`
	AllowLate     bool       `json:"allow_late"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AssignmentLite summarizes an assignment in nested responses.
type AssignmentLite struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	DueDate  *time.Time `json:"due_date"`
	MaxScore float64    `json:"max_score"`
}

// AssignmentStatsResponse pairs an assignment with its derived aggregates.
type AssignmentStatsResponse struct {
	Assignment AssignmentResponse  `json:"assignment"`
	Scores     derive.ScoreStats   `json:"scores"`
	Counts     derive.StatusCounts `json:"counts"`
	CacheHit   bool                `json:"cache_hit"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            model.ID,
		ClassID:       model.ClassID,
		Title:         model.Title,
		Description:   model.Description,
		AttachmentURL: model.AttachmentURL,
		DueDate:       model.DueDate,
		MaxScore:      model.MaxScore,
		AllowLate:     model.AllowLate,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(items []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(items))
	for _, assignment := range items {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
