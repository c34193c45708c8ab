package models

import "time"

const (
	// SubmissionStatusSubmitted marks an upload received before the deadline.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusLateSubmitted marks an upload received past the deadline.
	SubmissionStatusLateSubmitted = "late_submitted"
)

// Submission is a student's uploaded artifact for an assignment. The first
// upload creates the row; resubmission before grading replaces the file.
// Grading attaches Score/GradedAt/GradedBy and appends a history entry;
// prior history is never deleted.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;index" json:"student_id"`
	FileURL      string     `gorm:"size:512" json:"file_url"`
	FileName     string     `gorm:"size:255" json:"file_name"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	Score        *float64   `json:"score"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	GradedAt     *time.Time `json:"graded_at"`
	GradedBy     *uint      `json:"graded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Assignment Assignment             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student    User                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	History    []SubmissionGradeEntry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"history,omitempty"`
}

// IsGraded reports whether a teacher has attached a score.
func (s Submission) IsGraded() bool {
	return s.Score != nil
}

// SubmissionGradeEntry is an append-only record of a grading action.
type SubmissionGradeEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Score        float64   `gorm:"not null" json:"score"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedBy     uint      `gorm:"not null" json:"graded_by"`
	GradedAt     time.Time `gorm:"not null" json:"graded_at"`
}
