package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

func newCommentService(db *gorm.DB) CommentService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewClassRepository(db),
		validate,
		testLogger(),
	)
}

func seedThread(t *testing.T, db *gorm.DB, code string) (models.User, models.User, models.Submission) {
	t.Helper()

	teacher := seedUser(t, db, "cmt-teacher-"+code, models.RoleTeacher)
	student := seedUser(t, db, "cmt-student-"+code, models.RoleStudent)
	class := seedClass(t, db, teacher, code, student)
	due := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, class, "Essay", &due, false)
	submission := seedSubmission(t, db, assignment, student, models.SubmissionStatusSubmitted)

	return teacher, student, submission
}

func TestCommentServiceCreateAndList(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)

	teacher, student, submission := seedThread(t, db, "CMT00001")

	created, err := svc.Create(context.Background(), ActivityActor{ID: teacher.ID, Role: models.RoleTeacher}, dto.CommentCreateRequest{
		SubmissionID: submission.ID,
		Body:         "Please cite your sources.",
	})
	require.NoError(t, err)
	require.Equal(t, "Please cite your sources.", created.Body)
	require.Equal(t, teacher.ID, created.Author.ID)

	_, err = svc.Create(context.Background(), ActivityActor{ID: student.ID, Role: models.RoleStudent}, dto.CommentCreateRequest{
		SubmissionID: submission.ID,
		Body:         "Will do, thanks!",
	})
	require.NoError(t, err)

	thread, err := svc.ListForSubmission(context.Background(), submission.ID, ActivityActor{ID: student.ID, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, thread, 2)
}

func TestCommentServiceStripsMarkup(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)

	_, student, submission := seedThread(t, db, "CMT00002")

	created, err := svc.Create(context.Background(), ActivityActor{ID: student.ID, Role: models.RoleStudent}, dto.CommentCreateRequest{
		SubmissionID: submission.ID,
		Body:         `<script>alert("x")</script>question about <b>part two</b>`,
	})
	require.NoError(t, err)
	require.Equal(t, "question about part two", created.Body)
}

func TestCommentServiceEmptyAfterSanitization(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)

	_, student, submission := seedThread(t, db, "CMT00003")

	_, err := svc.Create(context.Background(), ActivityActor{ID: student.ID, Role: models.RoleStudent}, dto.CommentCreateRequest{
		SubmissionID: submission.ID,
		Body:         "<img src=x onerror=alert(1)>",
	})
	require.ErrorIs(t, err, ErrCommentEmpty)
}

func TestCommentServiceOutsiderForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)

	_, _, submission := seedThread(t, db, "CMT00004")
	outsider := seedUser(t, db, "cmt-outsider", models.RoleStudent)

	_, err := svc.ListForSubmission(context.Background(), submission.ID, ActivityActor{ID: outsider.ID, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	_, err = svc.Create(context.Background(), ActivityActor{ID: outsider.ID, Role: models.RoleStudent}, dto.CommentCreateRequest{
		SubmissionID: submission.ID,
		Body:         "let me in",
	})
	require.ErrorIs(t, err, ErrSubmissionForbidden)
}

func TestCommentServiceUnknownSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)

	student := seedUser(t, db, "cmt-student-x", models.RoleStudent)

	_, err := svc.Create(context.Background(), ActivityActor{ID: student.ID, Role: models.RoleStudent}, dto.CommentCreateRequest{
		SubmissionID: 9999,
		Body:         "hello?",
	})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
