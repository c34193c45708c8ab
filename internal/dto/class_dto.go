package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// ClassCreateRequest describes the payload for creating a class.
type ClassCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ClassUpdateRequest edits class metadata or toggles its lifecycle status.
type ClassUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,oneof=active archived"`
}

// ClassJoinRequest carries the join token a student redeems.
type ClassJoinRequest struct {
	Code string `json:"code" validate:"required,min=4,max=16"`
}

// ClassResponse is returned to API clients when viewing classes.
type ClassResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	TeacherID       uint      `json:"teacher_id"`
	TeacherName     string    `json:"teacher_name,omitempty"`
	Status          string    `json:"status"`
	MemberCount     int64     `json:"member_count"`
	AssignmentCount int64     `json:"assignment_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewClassResponse converts a Class model into a DTO.
func NewClassResponse(model models.Class, memberCount, assignmentCount int64) ClassResponse {
	response := ClassResponse{
		ID:              model.ID,
		Name:            model.Name,
		Code:            model.Code,
		Description:     model.Description,
		TeacherID:       model.TeacherID,
		Status:          model.Status,
		MemberCount:     memberCount,
		AssignmentCount: assignmentCount,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if model.Teacher.ID != 0 {
		response.TeacherName = model.Teacher.Name
	}

	return response
}
