package derive

import "time"

// NoDeadlineDays is the sentinel returned by DaysLeft when an assignment has
// no due date, signaling "no deadline pressure" to callers that sort or
// color-code by urgency.
const NoDeadlineDays = 999

// Urgency buckets the remaining time for display emphasis.
type Urgency string

const (
	// UrgencyUrgent covers deadlines within one calendar day (or overdue).
	UrgencyUrgent Urgency = "urgent"
	// UrgencyWarning covers deadlines within three calendar days.
	UrgencyWarning Urgency = "warning"
	// UrgencyNeutral covers everything else, including no deadline.
	UrgencyNeutral Urgency = "neutral"
)

// DaysLeft returns the signed whole-day difference between the due date and
// now, negative when overdue, or NoDeadlineDays when no due date exists. The
// difference is calendar-day based, not floor-of-hours, so the value does not
// flicker as a deadline crosses midnight.
func DaysLeft(dueDate *time.Time, now time.Time) int {
	if dueDate == nil {
		return NoDeadlineDays
	}

	return int(startOfDay(*dueDate).Sub(startOfDay(now)).Hours() / 24)
}

// UrgencyFor maps a DaysLeft value onto a display bucket.
func UrgencyFor(days int) Urgency {
	switch {
	case days == NoDeadlineDays:
		return UrgencyNeutral
	case days <= 1:
		return UrgencyUrgent
	case days <= 3:
		return UrgencyWarning
	default:
		return UrgencyNeutral
	}
}

func startOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
