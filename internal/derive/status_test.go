package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestClassifyPriorityOrder(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	pastDue := timePtr(now.Add(-24 * time.Hour))
	futureDue := timePtr(now.Add(24 * time.Hour))

	graded := &models.Submission{Status: models.SubmissionStatusLateSubmitted, Score: floatPtr(7)}
	require.Equal(t, StatusGraded, Classify(graded, pastDue, now), "grade wins over lateness")

	late := &models.Submission{Status: models.SubmissionStatusLateSubmitted}
	require.Equal(t, StatusLate, Classify(late, pastDue, now))

	onTime := &models.Submission{Status: models.SubmissionStatusSubmitted}
	require.Equal(t, StatusSubmitted, Classify(onTime, futureDue, now))
	require.Equal(t, StatusSubmitted, Classify(onTime, pastDue, now), "backend status decides, not the clock")

	require.Equal(t, StatusLate, Classify(nil, pastDue, now))
	require.Equal(t, StatusNotSubmitted, Classify(nil, futureDue, now))
	require.Equal(t, StatusNotSubmitted, Classify(nil, nil, now))
}

func TestClassifyTotality(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	submissions := []*models.Submission{
		nil,
		{},
		{Status: models.SubmissionStatusSubmitted},
		{Status: models.SubmissionStatusLateSubmitted},
		{Status: models.SubmissionStatusSubmitted, Score: floatPtr(9)},
	}
	dueDates := []*time.Time{
		nil,
		timePtr(now.Add(-48 * time.Hour)),
		timePtr(now.Add(48 * time.Hour)),
	}
	valid := map[Status]bool{
		StatusNotSubmitted: true,
		StatusSubmitted:    true,
		StatusLate:         true,
		StatusGraded:       true,
	}

	for _, sub := range submissions {
		for _, due := range dueDates {
			status := Classify(sub, due, now)
			require.True(t, valid[status], "unexpected status %q", status)
		}
	}
}

// Locks down the canonical reading of the missing-submission-past-deadline
// case: the student assignment list promotes it to late, and every other
// page now follows.
func TestClassifyMissingSubmissionPastDeadlineIsLate(t *testing.T) {
	due := time.Date(2025, 1, 30, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, StatusLate, Classify(nil, &due, now))
}

func TestWasLateSurvivesGrading(t *testing.T) {
	due := time.Date(2025, 4, 1, 23, 59, 0, 0, time.UTC)

	sub := &models.Submission{
		Status:      models.SubmissionStatusLateSubmitted,
		SubmittedAt: timePtr(due.Add(2 * time.Hour)),
		Score:       floatPtr(8),
	}
	require.Equal(t, StatusGraded, Classify(sub, &due, due.Add(72*time.Hour)))
	require.True(t, WasLate(sub, &due))

	onTime := &models.Submission{
		Status:      models.SubmissionStatusSubmitted,
		SubmittedAt: timePtr(due.Add(-2 * time.Hour)),
		Score:       floatPtr(8),
	}
	require.False(t, WasLate(onTime, &due))
	require.False(t, WasLate(nil, &due))
}

func TestDaysLeftSignConvention(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)

	require.Equal(t, 3, DaysLeft(timePtr(now.AddDate(0, 0, 3)), now))
	require.Equal(t, -1, DaysLeft(timePtr(now.AddDate(0, 0, -1)), now))
	require.Equal(t, 0, DaysLeft(timePtr(now.Add(2*time.Hour)), now))
	require.Equal(t, NoDeadlineDays, DaysLeft(nil, now))
}

// Calendar-day difference must not flicker near midnight: a due date a few
// minutes into tomorrow still counts as one day away late this evening.
func TestDaysLeftCalendarDayNotFloorOfHours(t *testing.T) {
	now := time.Date(2025, 5, 10, 23, 50, 0, 0, time.UTC)
	due := time.Date(2025, 5, 11, 0, 10, 0, 0, time.UTC)

	require.Equal(t, 1, DaysLeft(&due, now))
}

func TestUrgencyBuckets(t *testing.T) {
	require.Equal(t, UrgencyUrgent, UrgencyFor(-2))
	require.Equal(t, UrgencyUrgent, UrgencyFor(0))
	require.Equal(t, UrgencyUrgent, UrgencyFor(1))
	require.Equal(t, UrgencyWarning, UrgencyFor(2))
	require.Equal(t, UrgencyWarning, UrgencyFor(3))
	require.Equal(t, UrgencyNeutral, UrgencyFor(4))
	require.Equal(t, UrgencyNeutral, UrgencyFor(NoDeadlineDays))
}
