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

func newGradingService(db *gorm.DB) GradingService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewGradingService(
		repository.NewSubmissionRepository(db),
		repository.NewClassRepository(db),
		validate,
		nil,
		nil,
		nil,
		testLogger(),
	)
}

func seedSubmission(t *testing.T, db *gorm.DB, assignment models.Assignment, student models.User, status string) models.Submission {
	t.Helper()

	now := time.Now()
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		FileURL:      "https://cdn.example.com/work.pdf",
		FileName:     "work.pdf",
		Status:       status,
		SubmittedAt:  &now,
	}
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestGradingServiceGradePersistsScoreAndHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-a", models.RoleTeacher)
	student := seedUser(t, db, "grade-student-a", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE001", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Essay", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	response, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 8.5, Feedback: "Solid work"}, ActivityActor{ID: teacher.ID, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.NotNil(t, response.Score)
	require.InDelta(t, 8.5, *response.Score, 1e-9)
	require.Equal(t, "Solid work", response.Feedback)
	require.Equal(t, derive.StatusGraded, response.Status)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	require.NotNil(t, stored.Score)
	require.NotNil(t, stored.GradedAt)
	require.NotNil(t, stored.GradedBy)
	require.Equal(t, teacher.ID, *stored.GradedBy)

	var history []models.SubmissionGradeEntry
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Find(&history).Error)
	require.Len(t, history, 1)
	require.InDelta(t, 8.5, history[0].Score, 1e-9)
	require.Equal(t, teacher.ID, history[0].GradedBy)
}

func TestGradingServiceLateBadgeSurvivesGrading(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-b", models.RoleTeacher)
	student := seedUser(t, db, "grade-student-b", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE002", student)
	due := time.Now().Add(-48 * time.Hour)
	assignment := seedAssignment(t, db, class, "Lab", &due, true)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusLateSubmitted)

	response, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 7}, ActivityActor{ID: teacher.ID, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Equal(t, derive.StatusGraded, response.Status)
	require.True(t, response.Late)
}

func TestGradingServiceScoreExceedsMax(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-c", models.RoleTeacher)
	student := seedUser(t, db, "grade-student-c", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE003", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Quiz", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	_, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: models.DefaultMaxScore + 1}, ActivityActor{ID: teacher.ID, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrScoreExceedsMax)
}

func TestGradingServiceNonOwnerRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-d", models.RoleTeacher)
	other := seedUser(t, db, "grade-teacher-e", models.RoleTeacher)
	student := seedUser(t, db, "grade-student-d", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE004", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Project", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	_, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 6}, ActivityActor{ID: other.ID, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrGradeForbidden)
}

func TestGradingServiceAdminMayGradeAnyClass(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-f", models.RoleTeacher)
	admin := seedUser(t, db, "grade-admin-a", models.RoleAdmin)
	student := seedUser(t, db, "grade-student-e", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE005", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Homework", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	response, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 9}, ActivityActor{ID: admin.ID, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, derive.StatusGraded, response.Status)
}

func TestGradingServiceRepeatGradeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-g", models.RoleTeacher)
	student := seedUser(t, db, "grade-student-f", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE006", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Report", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	actor := ActivityActor{ID: teacher.ID, Role: models.RoleTeacher}
	_, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 8, Feedback: "Good"}, actor)
	require.NoError(t, err)

	_, err = svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 8, Feedback: "Good"}, actor)
	require.NoError(t, err)

	var history []models.SubmissionGradeEntry
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Find(&history).Error)
	require.Len(t, history, 1)
}

func TestGradingServiceRegradeAppendsHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)

	teacher := seedUser(t, db, "grade-teacher-h", models.RoleTeacher)
	student := seedUser(t, db, "grade-student-g", models.RoleStudent)
	class := seedClass(t, db, teacher, "GRADE007", student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Presentation", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	actor := ActivityActor{ID: teacher.ID, Role: models.RoleTeacher}
	_, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 6}, actor)
	require.NoError(t, err)

	response, err := svc.Grade(context.Background(), submission.ID, dto.GradeRequest{Score: 7.5, Feedback: "Revised after appeal"}, actor)
	require.NoError(t, err)
	require.InDelta(t, 7.5, *response.Score, 1e-9)

	var history []models.SubmissionGradeEntry
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Order("id").Find(&history).Error)
	require.Len(t, history, 2)
	require.InDelta(t, 6, history[0].Score, 1e-9)
	require.InDelta(t, 7.5, history[1].Score, 1e-9)
}
