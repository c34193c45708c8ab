package dto

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
)

// StudentAssignmentView is one row of the student assignment list: the
// assignment joined with the caller's own submission state and deadline
// pressure.
type StudentAssignmentView struct {
	AssignmentID uint          `json:"assignment_id"`
	ClassID      uint          `json:"class_id"`
	ClassName    string        `json:"class_name"`
	Title        string        `json:"title"`
	DueDate      *time.Time    `json:"due_date"`
	MaxScore     float64       `json:"max_score"`
	Status       derive.Status `json:"status"`
	Late         bool          `json:"late"`
	DaysLeft     int           `json:"days_left"`
	Urgency      derive.Urgency `json:"urgency"`
	SubmissionID *uint         `json:"submission_id"`
	FileURL      string        `json:"file_url,omitempty"`
	Score        *float64      `json:"score"`
	Feedback     string        `json:"feedback,omitempty"`
}

// ProgressSummary aggregates a student's standing across assignments.
type ProgressSummary struct {
	Total          int     `json:"total"`
	Submitted      int     `json:"submitted"`
	Graded         int     `json:"graded"`
	Pending        int     `json:"pending"`
	Late           int     `json:"late"`
	AverageScore   float64 `json:"average_score"`
	CompletionRate float64 `json:"completion_rate"`
}

// StudentAssignmentListResponse is the payload of GET /student/assignments.
type StudentAssignmentListResponse struct {
	Items   []StudentAssignmentView `json:"items"`
	Summary ProgressSummary         `json:"summary"`
}
