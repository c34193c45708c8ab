package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// RoleTeacher can create classes, assignments and grade submissions.
	RoleTeacher = "teacher"
	// RoleStudent can join classes and submit work.
	RoleStudent = "student"
	// RoleAdmin can manage users and read platform-wide reports.
	RoleAdmin = "admin"
)

const (
	// UserStatusActive marks an account that may sign in.
	UserStatusActive = "active"
	// UserStatusInactive marks an account disabled by an administrator.
	UserStatusInactive = "inactive"
)

// User represents an account in any of the three roles. Role is immutable
// through this API; only account status can be toggled by an admin.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"size:16;not null" json:"role"`
	Status    string         `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether the account is allowed to act.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}
