package models

import "time"

const (
	// ClassStatusActive accepts joins and new assignments.
	ClassStatusActive = "active"
	// ClassStatusArchived is read-only for students and rejects joins.
	ClassStatusArchived = "archived"
)

// Class is a teacher-owned group of students sharing assignments. The join
// code is generated server-side and handed out by the teacher.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	Status      string    `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Teacher     User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	Members     []User       `gorm:"many2many:class_members" json:"members,omitempty"`
	Assignments []Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignments,omitempty"`
}

// IsArchived reports whether the class has been archived by its teacher.
func (c Class) IsArchived() bool {
	return c.Status == ClassStatusArchived
}
