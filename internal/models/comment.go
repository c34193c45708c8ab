package models

import "time"

// Comment is feedback conversation attached to a submission. Bodies are
// HTML-sanitized before persistence.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	AuthorID     uint      `gorm:"not null" json:"author_id"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Author User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
}
