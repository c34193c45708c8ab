package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

func newSubmissionService(t *testing.T, db *gorm.DB) SubmissionService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewClassRepository(db),
		validate,
		nil,
		nil,
		nil,
		time.Minute,
		testLogger(),
	)
}

func TestSubmissionServiceSubmitOnTime(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	teacher := seedUser(t, db, "sub-teacher-a", models.RoleTeacher)
	student := seedUser(t, db, "sub-student-a", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE1", student)
	due := time.Now().Add(48 * time.Hour)
	assignment := seedAssignment(t, db, class, "Essay", &due, false)

	response, err := svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/essay.pdf",
		FileName: "essay.pdf",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, response.RawStatus)
	require.Equal(t, derive.StatusSubmitted, response.Status)
	require.False(t, response.Late)
}

func TestSubmissionServiceLateWhenAllowed(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	teacher := seedUser(t, db, "sub-teacher-b", models.RoleTeacher)
	student := seedUser(t, db, "sub-student-b", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE2", student)
	due := time.Now().Add(-time.Hour)
	assignment := seedAssignment(t, db, class, "Lab", &due, true)

	response, err := svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/lab.zip",
		FileName: "lab.zip",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusLateSubmitted, response.RawStatus)
	require.Equal(t, derive.StatusLate, response.Status)
	require.True(t, response.Late)
}

func TestSubmissionServiceLateRejectedWhenNotAllowed(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	teacher := seedUser(t, db, "sub-teacher-c", models.RoleTeacher)
	student := seedUser(t, db, "sub-student-c", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE3", student)
	due := time.Now().Add(-time.Hour)
	assignment := seedAssignment(t, db, class, "Quiz", &due, false)

	_, err := svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/quiz.pdf",
		FileName: "quiz.pdf",
	})
	require.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestSubmissionServiceResubmitReplacesFile(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	teacher := seedUser(t, db, "sub-teacher-d", models.RoleTeacher)
	student := seedUser(t, db, "sub-student-d", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE4", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Report", &due, false)

	first, err := svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/v1.pdf",
		FileName: "v1.pdf",
	})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/v2.pdf",
		FileName: "v2.pdf",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "https://cdn.example.com/v2.pdf", second.FileURL)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmissionServiceResubmitAfterGradingRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	teacher := seedUser(t, db, "sub-teacher-e", models.RoleTeacher)
	student := seedUser(t, db, "sub-student-e", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE5", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Project", &due, false)

	_, err := svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/project.zip",
		FileName: "project.zip",
	})
	require.NoError(t, err)

	score := 8.5
	require.NoError(t, db.Model(&models.Submission{}).
		Where("assignment_id = ? AND student_id = ?", assignment.ID, student.ID).
		Update("score", &score).Error)

	_, err = svc.Submit(context.Background(), assignment.ID, student.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/project-v2.zip",
		FileName: "project-v2.zip",
	})
	require.ErrorIs(t, err, ErrResubmitAfterGrading)
}

func TestSubmissionServiceNonMemberRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	teacher := seedUser(t, db, "sub-teacher-f", models.RoleTeacher)
	outsider := seedUser(t, db, "sub-student-f", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE6")
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Homework", &due, false)

	_, err := svc.Submit(context.Background(), assignment.ID, outsider.ID, dto.SubmissionCreateRequest{
		FileURL:  "https://cdn.example.com/hw.pdf",
		FileName: "hw.pdf",
	})
	require.ErrorIs(t, err, ErrNotClassMember)
}

func TestSubmissionServiceStatsCountsAndCaches(t *testing.T) {
	db := newTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	redisClient := newTestRedis(t)
	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewClassRepository(db),
		validate,
		nil,
		nil,
		redisClient,
		time.Minute,
		testLogger(),
	)

	teacher := seedUser(t, db, "sub-teacher-g", models.RoleTeacher)
	alice := seedUser(t, db, "sub-alice", models.RoleStudent)
	bob := seedUser(t, db, "sub-bob", models.RoleStudent)
	carol := seedUser(t, db, "sub-carol", models.RoleStudent)
	class := seedClass(t, db, teacher, "SUBCODE7", alice, bob, carol)
	due := time.Now().Add(-time.Hour)
	assignment := seedAssignment(t, db, class, "Exam", &due, true)

	score := 9.0
	now := time.Now()
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    alice.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
		Score:        &score,
	}).Error)
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    bob.ID,
		Status:       models.SubmissionStatusLateSubmitted,
		SubmittedAt:  &now,
	}).Error)

	stats, err := svc.Stats(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.False(t, stats.CacheHit)
	require.Equal(t, 1, stats.Counts.Graded)
	// Bob handed in late; Carol never handed in and the deadline passed.
	require.Equal(t, 2, stats.Counts.Late)
	require.Equal(t, 0, stats.Counts.NotSubmitted)
	require.Equal(t, 0, stats.Counts.Submitted)
	require.Equal(t, 1, stats.Scores.Graded)
	require.InDelta(t, 9.0, stats.Scores.Average, 1e-9)

	cached, err := svc.Stats(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
}
