package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// CommentCreateRequest posts feedback on a submission.
type CommentCreateRequest struct {
	SubmissionID uint   `json:"submission_id" validate:"required"`
	Body         string `json:"body" validate:"required,min=1,max=5000"`
}

// CommentResponse is returned to API clients when viewing comments.
type CommentResponse struct {
	ID           uint      `json:"id"`
	SubmissionID uint      `json:"submission_id"`
	Body         string    `json:"body"`
	Author       UserLite  `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCommentResponse converts a Comment model into a DTO.
func NewCommentResponse(model models.Comment) CommentResponse {
	response := CommentResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		Body:         model.Body,
		CreatedAt:    model.CreatedAt,
	}

	if model.Author.ID != 0 {
		response.Author = UserLite{
			ID:    model.Author.ID,
			Name:  model.Author.Name,
			Email: model.Author.Email,
			Role:  model.Author.Role,
		}
	}

	return response
}

// NewCommentResponseSlice converts comment models into DTOs.
func NewCommentResponseSlice(items []models.Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(items))
	for _, comment := range items {
		responses = append(responses, NewCommentResponse(comment))
	}

	return responses
}
