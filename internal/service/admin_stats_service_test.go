package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

func TestAdminStatsSummaryAggregates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminStatsService(repository.NewAdminStatsRepository(db), nil, time.Minute, testLogger())

	teacher := seedUser(t, db, "stats-teacher-a", models.RoleTeacher)
	alice := seedUser(t, db, "stats-alice", models.RoleStudent)
	bob := seedUser(t, db, "stats-bob", models.RoleStudent)
	inactive := seedUser(t, db, "stats-carol", models.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("status", models.UserStatusInactive).Error)

	class := seedClass(t, db, teacher, "STAT0001", alice, bob)
	due := time.Now().Add(-time.Hour)
	assignment := seedAssignment(t, db, class, "Final", &due, true)

	now := time.Now()
	high := 9.5
	low := 5.0
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    alice.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
		Score:        &high,
	}).Error)
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    bob.ID,
		Status:       models.SubmissionStatusLateSubmitted,
		SubmittedAt:  &now,
		Score:        &low,
	}).Error)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 4, summary.TotalUsers)
	require.EqualValues(t, 3, summary.ActiveUsers)
	require.EqualValues(t, 1, summary.TotalTeachers)
	require.EqualValues(t, 3, summary.TotalStudents)
	require.EqualValues(t, 1, summary.TotalClasses)
	require.EqualValues(t, 2, summary.TotalSubmissions)
	require.EqualValues(t, 2, summary.GradedSubmissions)

	// Percent of max score: 95 lands in 90-100, 50 in 0-59.
	buckets := make(map[string]int, len(summary.GradeDistribution))
	for _, bucket := range summary.GradeDistribution {
		buckets[bucket.Label] = bucket.Count
	}
	require.Equal(t, 1, buckets["90-100"])
	require.Equal(t, 0, buckets["75-89"])
	require.Equal(t, 0, buckets["60-74"])
	require.Equal(t, 1, buckets["0-59"])
	require.InDelta(t, 72.5, summary.AverageScore, 1e-9)

	require.Len(t, summary.WeeklyEngagement, 1)
	require.Equal(t, 2, summary.WeeklyEngagement[0].Submissions)
	require.Equal(t, time.Monday, summary.WeeklyEngagement[0].WeekStart.Weekday())
}

func TestAdminStatsSummaryEmptyPlatform(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminStatsService(repository.NewAdminStatsRepository(db), nil, time.Minute, testLogger())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, summary.TotalUsers)
	require.EqualValues(t, 0, summary.TotalSubmissions)
	require.Zero(t, summary.AverageScore)
	require.Empty(t, summary.WeeklyEngagement)
}

func TestAdminStatsSummaryCaches(t *testing.T) {
	db := newTestDB(t)
	redisClient := newTestRedis(t)
	svc := NewAdminStatsService(repository.NewAdminStatsRepository(db), redisClient, time.Minute, testLogger())

	seedUser(t, db, "stats-teacher-b", models.RoleTeacher)

	cold, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.False(t, cold.CacheHit)
	require.EqualValues(t, 1, cold.TotalUsers)

	warm, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.True(t, warm.CacheHit)
	require.EqualValues(t, 1, warm.TotalUsers)
}
