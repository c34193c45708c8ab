package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"gorm.io/datatypes"
)

// AdminUserListRequest describes query string filters for the admin user list.
type AdminUserListRequest struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Role     string `query:"role" validate:"omitempty,oneof=teacher student admin"`
	Status   string `query:"status" validate:"omitempty,oneof=active inactive"`
	Search   string `query:"search" validate:"omitempty,max=255"`
	SortBy   string `query:"sort_by"`
	SortDir  string `query:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

// AdminUserUpdateRequest toggles an account's status. Admins manage lifecycle
// only; profile edits stay with the account owner.
type AdminUserUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// AdminUserResponse is an account row in the admin console.
type AdminUserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminUserListResponse pairs user rows with pagination metadata.
type AdminUserListResponse struct {
	Items []AdminUserResponse `json:"items"`
	Meta  PaginationMeta      `json:"meta"`
}

// NewAdminUserResponse converts a User model into an admin DTO.
func NewAdminUserResponse(model models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      model.Role,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAdminUserResponseSlice converts user models into admin DTOs.
func NewAdminUserResponseSlice(items []models.User) []AdminUserResponse {
	responses := make([]AdminUserResponse, 0, len(items))
	for _, user := range items {
		responses = append(responses, NewAdminUserResponse(user))
	}

	return responses
}

// GradeBucket is one bar of the platform grade distribution histogram.
type GradeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// WeeklyEngagement counts submissions handed in during one ISO week.
type WeeklyEngagement struct {
	WeekStart   time.Time `json:"week_start"`
	Submissions int       `json:"submissions"`
}

// AdminStatsResponse is the platform-wide analytics snapshot.
type AdminStatsResponse struct {
	TotalUsers        int64              `json:"total_users"`
	ActiveUsers       int64              `json:"active_users"`
	TotalTeachers     int64              `json:"total_teachers"`
	TotalStudents     int64              `json:"total_students"`
	TotalClasses      int64              `json:"total_classes"`
	TotalSubmissions  int64              `json:"total_submissions"`
	GradedSubmissions int64              `json:"graded_submissions"`
	AverageScore      float64            `json:"average_score"`
	GradeDistribution []GradeBucket      `json:"grade_distribution"`
	WeeklyEngagement  []WeeklyEngagement `json:"weekly_engagement"`
	GeneratedAt       time.Time          `json:"generated_at"`
	CacheHit          bool               `json:"cache_hit"`
}

// ActivityLogListRequest describes query string filters for the audit trail.
type ActivityLogListRequest struct {
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
	ActorID    *uint  `query:"actor_id"`
	Action     string `query:"action" validate:"omitempty,max=64"`
	EntityType string `query:"entity_type" validate:"omitempty,max=64"`
}

// ActivityLogResponse is one audit trail entry.
type ActivityLogResponse struct {
	ID         uint              `json:"id"`
	ActorID    uint              `json:"actor_id"`
	ActorRole  string            `json:"actor_role"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ActivityLogListResponse pairs audit entries with pagination metadata.
type ActivityLogListResponse struct {
	Items []ActivityLogResponse `json:"items"`
	Meta  PaginationMeta        `json:"meta"`
}

// NewActivityLogResponseSlice converts activity log models into DTOs.
func NewActivityLogResponseSlice(items []models.ActivityLog) []ActivityLogResponse {
	responses := make([]ActivityLogResponse, 0, len(items))
	for _, entry := range items {
		responses = append(responses, ActivityLogResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			ActorRole:  entry.ActorRole,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Metadata:   entry.Metadata,
			CreatedAt:  entry.CreatedAt,
		})
	}

	return responses
}
