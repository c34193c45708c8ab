package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
)

// GradebookResponse is the student x assignment matrix for one class.
type GradebookResponse struct {
	ClassID     uint             `json:"class_id"`
	Assignments []AssignmentLite `json:"assignments"`
	Book        derive.Gradebook `json:"book"`
	GeneratedAt time.Time        `json:"generated_at"`
	CacheHit    bool             `json:"cache_hit"`
}
