package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

func newStudentAssignmentService(db *gorm.DB) StudentAssignmentService {
	return NewStudentAssignmentService(
		repository.NewClassRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		testLogger(),
	)
}

func TestStudentAssignmentListAcrossClasses(t *testing.T) {
	db := newTestDB(t)
	svc := newStudentAssignmentService(db)

	teacher := seedUser(t, db, "view-teacher-a", models.RoleTeacher)
	student := seedUser(t, db, "view-student-a", models.RoleStudent)
	math := seedClass(t, db, teacher, "VIEW0001", student)
	physics := seedClass(t, db, teacher, "VIEW0002", student)

	soon := time.Now().Add(12 * time.Hour)
	farOut := time.Now().Add(10 * 24 * time.Hour)
	passed := time.Now().Add(-24 * time.Hour)
	graded := seedAssignment(t, db, math, "Algebra Set", &farOut, false)
	urgent := seedAssignment(t, db, math, "Geometry Quiz", &soon, false)
	missed := seedAssignment(t, db, physics, "Optics Lab", &passed, true)
	seedAssignment(t, db, physics, "Reading Notes", nil, false)

	score := 9.0
	now := time.Now()
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: graded.ID,
		StudentID:    student.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
		Score:        &score,
	}).Error)

	response, err := svc.List(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, response.Items, 4)

	views := make(map[uint]int, len(response.Items))
	for i, item := range response.Items {
		views[item.AssignmentID] = i
	}

	require.Equal(t, derive.StatusGraded, response.Items[views[graded.ID]].Status)
	require.Equal(t, derive.StatusNotSubmitted, response.Items[views[urgent.ID]].Status)
	require.Equal(t, derive.UrgencyUrgent, response.Items[views[urgent.ID]].Urgency)
	require.Equal(t, derive.StatusLate, response.Items[views[missed.ID]].Status)

	// Closest deadline first, no-deadline rows last.
	require.Equal(t, missed.ID, response.Items[0].AssignmentID)
	require.Equal(t, urgent.ID, response.Items[1].AssignmentID)
	require.Equal(t, derive.NoDeadlineDays, response.Items[3].DaysLeft)

	require.Equal(t, 4, response.Summary.Total)
	require.Equal(t, 1, response.Summary.Submitted)
	require.Equal(t, 1, response.Summary.Graded)
	require.Equal(t, 1, response.Summary.Late)
	require.InDelta(t, 9.0, response.Summary.AverageScore, 1e-9)
	require.InDelta(t, 25.0, response.Summary.CompletionRate, 1e-9)
}

func TestStudentAssignmentListEmptyEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := newStudentAssignmentService(db)

	student := seedUser(t, db, "view-student-b", models.RoleStudent)

	response, err := svc.List(context.Background(), student.ID)
	require.NoError(t, err)
	require.Empty(t, response.Items)
	require.Equal(t, 0, response.Summary.Total)
	require.Zero(t, response.Summary.AverageScore)
	require.Zero(t, response.Summary.CompletionRate)
}

func TestStudentAssignmentLateBadgeAfterGrading(t *testing.T) {
	db := newTestDB(t)
	svc := newStudentAssignmentService(db)

	teacher := seedUser(t, db, "view-teacher-c", models.RoleTeacher)
	student := seedUser(t, db, "view-student-c", models.RoleStudent)
	class := seedClass(t, db, teacher, "VIEW0003", student)
	passed := time.Now().Add(-72 * time.Hour)
	assignment := seedAssignment(t, db, class, "Late Lab", &passed, true)

	score := 6.5
	gradedAt := time.Now()
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Status:       models.SubmissionStatusLateSubmitted,
		SubmittedAt:  &gradedAt,
		Score:        &score,
	}).Error)

	response, err := svc.List(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	require.Equal(t, derive.StatusGraded, response.Items[0].Status)
	require.True(t, response.Items[0].Late)
	require.Equal(t, 1, response.Summary.Late)
	require.Equal(t, 1, response.Summary.Graded)
}
