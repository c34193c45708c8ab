package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// StudentAssignmentService builds the cross-class assignment list a student
// sees, with derived status and deadline pressure per row.
type StudentAssignmentService interface {
	List(ctx context.Context, studentID uint) (dto.StudentAssignmentListResponse, error)
}

type studentAssignmentService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentAssignmentService constructs the student view aggregator.
func NewStudentAssignmentService(classes repository.ClassRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) StudentAssignmentService {
	return &studentAssignmentService{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "student_assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *studentAssignmentService) List(ctx context.Context, studentID uint) (dto.StudentAssignmentListResponse, error) {
	classes, err := s.classes.ListByMember(ctx, studentID)
	if err != nil {
		return dto.StudentAssignmentListResponse{}, err
	}

	classNames := make(map[uint]string, len(classes))
	classIDs := make([]uint, 0, len(classes))
	for _, class := range classes {
		classNames[class.ID] = class.Name
		classIDs = append(classIDs, class.ID)
	}

	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		return dto.StudentAssignmentListResponse{}, err
	}

	filter := repository.SubmissionFilter{StudentID: &studentID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.StudentAssignmentListResponse{}, err
	}

	byAssignment := make(map[uint]*models.Submission, len(submissions))
	for i := range submissions {
		byAssignment[submissions[i].AssignmentID] = &submissions[i]
	}

	now := s.now()
	items := make([]dto.StudentAssignmentView, 0, len(assignments))
	summary := dto.ProgressSummary{}
	var scoreTotal float64

	for _, assignment := range assignments {
		sub := byAssignment[assignment.ID]
		status := derive.Classify(sub, assignment.DueDate, now)
		days := derive.DaysLeft(assignment.DueDate, now)

		view := dto.StudentAssignmentView{
			AssignmentID: assignment.ID,
			ClassID:      assignment.ClassID,
			ClassName:    classNames[assignment.ClassID],
			Title:        assignment.Title,
			DueDate:      assignment.DueDate,
			MaxScore:     assignment.MaxScore,
			Status:       status,
			Late:         derive.WasLate(sub, assignment.DueDate),
			DaysLeft:     days,
			Urgency:      derive.UrgencyFor(days),
		}

		summary.Total++
		if sub != nil {
			view.SubmissionID = &sub.ID
			view.FileURL = sub.FileURL
			view.Score = sub.Score
			view.Feedback = sub.Feedback
			summary.Submitted++
		}

		switch status {
		case derive.StatusGraded:
			summary.Graded++
			if sub != nil && sub.Score != nil {
				scoreTotal += *sub.Score
			}
		case derive.StatusLate:
			summary.Late++
			if sub != nil {
				summary.Pending++
			}
		case derive.StatusSubmitted:
			summary.Pending++
		}
		if view.Late && status == derive.StatusGraded {
			summary.Late++
		}

		items = append(items, view)
	}

	if summary.Graded > 0 {
		summary.AverageScore = scoreTotal / float64(summary.Graded)
	}
	if summary.Total > 0 {
		summary.CompletionRate = float64(summary.Graded) / float64(summary.Total) * 100
	}

	// Closest deadline first; rows without a deadline sink to the bottom.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysLeft < items[j].DaysLeft
	})

	return dto.StudentAssignmentListResponse{Items: items, Summary: summary}, nil
}
