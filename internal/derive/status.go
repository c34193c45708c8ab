// Package derive holds the pure derivation core shared by every view that
// shows submission state: status classification, deadline arithmetic and
// grade aggregation. Nothing in this package performs I/O.
package derive

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// Status is the unified display status of an assignment for one student.
type Status string

const (
	// StatusNotSubmitted means no upload exists and the deadline, if any,
	// has not passed.
	StatusNotSubmitted Status = "not_submitted"
	// StatusSubmitted means an ungraded upload exists that arrived on time.
	StatusSubmitted Status = "submitted"
	// StatusLate means either an upload arrived past the deadline, or the
	// deadline passed with no upload at all.
	StatusLate Status = "late"
	// StatusGraded means a score has been attached. Graded is terminal:
	// lateness is carried separately via WasLate.
	StatusGraded Status = "graded"
)

// Classify maps a (submission, due date) pair to exactly one Status. The
// rules apply in priority order:
//
//  1. a grade exists            -> graded
//  2. a submission exists       -> late when marked late_submitted, else submitted
//  3. deadline passed, no work  -> late
//  4. otherwise                 -> not_submitted
//
// Rule 3 is the canonical reading for every page; a missing submission past
// the deadline always classifies as late.
func Classify(sub *models.Submission, dueDate *time.Time, now time.Time) Status {
	if sub != nil {
		if sub.IsGraded() {
			return StatusGraded
		}
		if sub.Status == models.SubmissionStatusLateSubmitted {
			return StatusLate
		}
		return StatusSubmitted
	}

	if dueDate != nil && now.After(*dueDate) {
		return StatusLate
	}

	return StatusNotSubmitted
}

// WasLate is the single source of truth for the persistent "late" badge. It
// survives grading, so teacher-facing lists keep showing it after a score is
// attached while Classify stays terminal at graded.
func WasLate(sub *models.Submission, dueDate *time.Time) bool {
	if sub == nil {
		return false
	}
	if sub.Status == models.SubmissionStatusLateSubmitted {
		return true
	}
	return dueDate != nil && sub.SubmittedAt != nil && sub.SubmittedAt.After(*dueDate)
}
