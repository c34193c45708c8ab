package models

import "time"

// DefaultMaxScore applies when an assignment is created without an explicit
// maximum score.
const DefaultMaxScore = 10

// Assignment is a unit of work scoped to a class. A nil DueDate means the
// assignment has no deadline.
type Assignment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ClassID       uint       `gorm:"not null;index" json:"class_id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	AttachmentURL string     `gorm:"size:512" json:"attachment_url"`
	DueDate       *time.Time `json:"due_date"`
	MaxScore      float64    `gorm:"not null;default:10" json:"max_score"`
	AllowLate     bool       `gorm:"not null;default:false" json:"allow_late"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Class       Class        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
	Submissions []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
}

// IsPastDue reports whether the deadline has passed at the reference instant.
// Assignments without a due date are never past due.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
