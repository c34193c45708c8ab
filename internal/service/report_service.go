package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/export"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// ReportService renders CSV exports for the admin console and teachers.
// Every export carries a UTF-8 BOM so spreadsheet tools render Vietnamese
// names correctly.
type ReportService interface {
	ExportUsers(ctx context.Context) ([]byte, string, error)
	ExportClasses(ctx context.Context) ([]byte, string, error)
	ExportGradebook(ctx context.Context, classID uint) ([]byte, string, error)
}

type reportService struct {
	users       repository.UserRepository
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReportService constructs the export service.
func NewReportService(users repository.UserRepository, classes repository.ClassRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		users:       users,
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "report_service").Logger(),
		now:         time.Now,
	}
}

func (s *reportService) ExportUsers(ctx context.Context) ([]byte, string, error) {
	users, _, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, "", err
	}

	header := []string{"ID", "Name", "Email", "Role", "Status", "Created At"}
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(user.ID), 10),
			user.Name,
			user.Email,
			user.Role,
			user.Status,
			user.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	payload, err := export.CSV(header, rows)
	if err != nil {
		return nil, "", err
	}

	return payload, s.fileName("users"), nil
}

func (s *reportService) ExportClasses(ctx context.Context) ([]byte, string, error) {
	classes, _, err := s.classes.List(ctx, repository.ClassFilter{})
	if err != nil {
		return nil, "", err
	}

	header := []string{"ID", "Name", "Code", "Teacher", "Status", "Members", "Assignments"}
	rows := make([][]string, 0, len(classes))
	for _, class := range classes {
		memberCount, err := s.classes.CountMembers(ctx, class.ID)
		if err != nil {
			return nil, "", err
		}
		assignmentCount, err := s.classes.CountAssignments(ctx, class.ID)
		if err != nil {
			return nil, "", err
		}

		rows = append(rows, []string{
			strconv.FormatUint(uint64(class.ID), 10),
			class.Name,
			class.Code,
			class.Teacher.Name,
			class.Status,
			strconv.FormatInt(memberCount, 10),
			strconv.FormatInt(assignmentCount, 10),
		})
	}

	payload, err := export.CSV(header, rows)
	if err != nil {
		return nil, "", err
	}

	return payload, s.fileName("classes"), nil
}

func (s *reportService) ExportGradebook(ctx context.Context, classID uint) ([]byte, string, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		return nil, "", ErrClassNotFound
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, "", err
	}

	members, err := s.classes.ListMembers(ctx, classID)
	if err != nil {
		return nil, "", err
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		return nil, "", err
	}

	book := derive.BuildGradebook(assignments, members, submissions)

	header := []string{"Student", "Email"}
	for _, assignment := range assignments {
		header = append(header, assignment.Title)
	}
	header = append(header, "Average")

	rows := make([][]string, 0, len(book.Rows))
	for _, row := range book.Rows {
		record := []string{row.StudentName, row.StudentEmail}
		for _, assignment := range assignments {
			record = append(record, formatCell(row.Cells[assignment.ID]))
		}
		average := ""
		if row.GradedCount > 0 {
			average = strconv.FormatFloat(row.Average, 'f', 2, 64)
		}
		record = append(record, average)
		rows = append(rows, record)
	}

	payload, err := export.CSV(header, rows)
	if err != nil {
		return nil, "", err
	}

	return payload, s.fileName(fmt.Sprintf("gradebook-class-%d", classID)), nil
}

func (s *reportService) fileName(base string) string {
	return fmt.Sprintf("%s-%s.csv", base, s.now().UTC().Format("20060102-150405"))
}

// formatCell renders a gradebook cell for spreadsheets: a number for graded
// work, a marker for pending or late work, blank when nothing was handed in.
func formatCell(cell derive.GradebookCell) string {
	switch cell.Kind {
	case derive.CellScore:
		return strconv.FormatFloat(cell.Score, 'f', 2, 64)
	case derive.CellLate:
		return "late"
	case derive.CellPending:
		return "pending"
	default:
		return ""
	}
}
