package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

func TestGradebookServiceBuildsMatrix(t *testing.T) {
	db := newTestDB(t)
	svc := NewGradebookService(
		repository.NewClassRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		nil,
		time.Minute,
		testLogger(),
	)

	teacher := seedUser(t, db, "book-teacher-a", models.RoleTeacher)
	alice := seedUser(t, db, "book-alice", models.RoleStudent)
	bob := seedUser(t, db, "book-bob", models.RoleStudent)
	class := seedClass(t, db, teacher, "BOOK0001", alice, bob)
	due := time.Now().Add(-24 * time.Hour)
	first := seedAssignment(t, db, class, "Essay", &due, true)
	second := seedAssignment(t, db, class, "Lab", nil, false)

	score := 9.0
	now := time.Now()
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: first.ID,
		StudentID:    alice.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
		Score:        &score,
	}).Error)
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: first.ID,
		StudentID:    bob.ID,
		Status:       models.SubmissionStatusLateSubmitted,
		SubmittedAt:  &now,
	}).Error)
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: second.ID,
		StudentID:    alice.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
	}).Error)

	response, err := svc.Gradebook(context.Background(), class.ID)
	require.NoError(t, err)
	require.Equal(t, class.ID, response.ClassID)
	require.Len(t, response.Assignments, 2)
	require.Len(t, response.Book.Rows, 2)

	rows := make(map[uint]derive.GradebookRow, len(response.Book.Rows))
	for _, row := range response.Book.Rows {
		rows[row.StudentID] = row
	}

	require.Equal(t, derive.CellScore, rows[alice.ID].Cells[first.ID].Kind)
	require.InDelta(t, 9.0, rows[alice.ID].Cells[first.ID].Score, 1e-9)
	require.Equal(t, derive.CellPending, rows[alice.ID].Cells[second.ID].Kind)
	require.Equal(t, derive.CellLate, rows[bob.ID].Cells[first.ID].Kind)
	require.Equal(t, derive.CellEmpty, rows[bob.ID].Cells[second.ID].Kind)

	require.Equal(t, 1, response.Book.TotalGraded)
	require.Equal(t, 2, response.Book.TotalPending)
	require.InDelta(t, 9.0, response.Book.ClassAverage, 1e-9)
}

func TestGradebookServiceUnknownClass(t *testing.T) {
	db := newTestDB(t)
	svc := NewGradebookService(
		repository.NewClassRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		nil,
		time.Minute,
		testLogger(),
	)

	_, err := svc.Gradebook(context.Background(), 12345)
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestGradebookServiceCachesAndInvalidatesOnGrade(t *testing.T) {
	db := newTestDB(t)
	redisClient := newTestRedis(t)
	submissions := repository.NewSubmissionRepository(db)
	classes := repository.NewClassRepository(db)
	gradebook := NewGradebookService(
		classes,
		repository.NewAssignmentRepository(db),
		submissions,
		redisClient,
		time.Minute,
		testLogger(),
	)
	validate := validator.New(validator.WithRequiredStructEnabled())
	grading := NewGradingService(submissions, classes, validate, nil, nil, gradebook, testLogger())

	teacher := seedUser(t, db, "book-teacher-b", models.RoleTeacher)
	student := seedUser(t, db, "book-carol", models.RoleStudent)
	class := seedClass(t, db, teacher, "BOOK0002", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Exam", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	cold, err := gradebook.Gradebook(context.Background(), class.ID)
	require.NoError(t, err)
	require.False(t, cold.CacheHit)
	require.Equal(t, derive.CellPending, cold.Book.Rows[0].Cells[assignment.ID].Kind)

	warm, err := gradebook.Gradebook(context.Background(), class.ID)
	require.NoError(t, err)
	require.True(t, warm.CacheHit)

	_, err = grading.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 8}, ActivityActor{ID: teacher.ID, Role: models.RoleTeacher})
	require.NoError(t, err)

	rebuilt, err := gradebook.Gradebook(context.Background(), class.ID)
	require.NoError(t, err)
	require.False(t, rebuilt.CacheHit)
	require.Equal(t, derive.CellScore, rebuilt.Book.Rows[0].Cells[assignment.ID].Kind)
	require.InDelta(t, 8.0, rebuilt.Book.Rows[0].Cells[assignment.ID].Score, 1e-9)
}
