package derive

import (
	"time"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

// ScoreStats summarizes the graded subset of a submission collection. All
// fields are zero when nothing has been graded; folds over empty collections
// must never surface NaN or infinities.
type ScoreStats struct {
	Average float64 `json:"average"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Graded  int     `json:"graded"`
}

// ScoreStatsFor folds the graded submissions into average/high/low.
func ScoreStatsFor(subs []models.Submission) ScoreStats {
	stats := ScoreStats{}
	total := 0.0

	for i := range subs {
		score := subs[i].Score
		if score == nil {
			continue
		}
		if stats.Graded == 0 {
			stats.High = *score
			stats.Low = *score
		} else {
			if *score > stats.High {
				stats.High = *score
			}
			if *score < stats.Low {
				stats.Low = *score
			}
		}
		total += *score
		stats.Graded++
	}

	if stats.Graded > 0 {
		stats.Average = total / float64(stats.Graded)
	}

	return stats
}

// StatusCounts tallies submissions per display status for one assignment.
type StatusCounts struct {
	NotSubmitted int `json:"not_submitted"`
	Submitted    int `json:"submitted"`
	Late         int `json:"late"`
	Graded       int `json:"graded"`
}

// CountStatuses classifies each member's submission (or absence of one)
// against the assignment deadline and tallies the result.
func CountStatuses(assignment models.Assignment, memberIDs []uint, subs []models.Submission, now time.Time) StatusCounts {
	byStudent := make(map[uint]*models.Submission, len(subs))
	for i := range subs {
		byStudent[subs[i].StudentID] = &subs[i]
	}

	counts := StatusCounts{}
	for _, id := range memberIDs {
		switch Classify(byStudent[id], assignment.DueDate, now) {
		case StatusGraded:
			counts.Graded++
		case StatusLate:
			counts.Late++
		case StatusSubmitted:
			counts.Submitted++
		default:
			counts.NotSubmitted++
		}
	}

	return counts
}

// CellKind discriminates gradebook cell content.
type CellKind string

const (
	// CellScore holds a numeric grade.
	CellScore CellKind = "score"
	// CellPending holds an ungraded on-time submission.
	CellPending CellKind = "pending"
	// CellLate holds an ungraded late submission.
	CellLate CellKind = "late"
	// CellEmpty means no submission exists.
	CellEmpty CellKind = "empty"
)

// GradebookCell resolves one (student, assignment) pair.
type GradebookCell struct {
	Kind         CellKind `json:"kind"`
	Score        float64  `json:"score,omitempty"`
	Late         bool     `json:"late,omitempty"`
	SubmissionID *uint    `json:"submission_id,omitempty"`
}

// GradebookRow is one student's score-by-assignment vector plus the running
// average over graded cells only.
type GradebookRow struct {
	StudentID    uint                   `json:"student_id"`
	StudentName  string                 `json:"student_name"`
	StudentEmail string                 `json:"student_email"`
	Cells        map[uint]GradebookCell `json:"cells"`
	Average      float64                `json:"average"`
	GradedCount  int                    `json:"graded_count"`
}

// Gradebook is the full student x assignment matrix for a class along with
// class-wide aggregates. High/low averages consider only students with at
// least one graded cell; when no cell is graded every aggregate is zero.
type Gradebook struct {
	Rows           []GradebookRow `json:"rows"`
	ClassAverage   float64        `json:"class_average"`
	HighestAverage float64        `json:"highest_average"`
	LowestAverage  float64        `json:"lowest_average"`
	TotalGraded    int            `json:"total_graded"`
	TotalPending   int            `json:"total_pending"`
}

// BuildGradebook folds members, assignments and submissions into the matrix.
// Pure: callers supply every record and receive a fully derived value.
func BuildGradebook(assignments []models.Assignment, members []models.User, subs []models.Submission) Gradebook {
	type key struct {
		student    uint
		assignment uint
	}
	byPair := make(map[key]*models.Submission, len(subs))
	for i := range subs {
		byPair[key{subs[i].StudentID, subs[i].AssignmentID}] = &subs[i]
	}

	dueDates := make(map[uint]*time.Time, len(assignments))
	for _, a := range assignments {
		dueDates[a.ID] = a.DueDate
	}

	book := Gradebook{Rows: make([]GradebookRow, 0, len(members))}
	var averagesTotal float64
	var rated int

	for _, member := range members {
		row := GradebookRow{
			StudentID:    member.ID,
			StudentName:  member.Name,
			StudentEmail: member.Email,
			Cells:        make(map[uint]GradebookCell, len(assignments)),
		}
		var rowTotal float64

		for _, a := range assignments {
			sub := byPair[key{member.ID, a.ID}]
			cell := GradebookCell{Kind: CellEmpty}
			if sub != nil {
				cell.SubmissionID = &sub.ID
				cell.Late = WasLate(sub, dueDates[a.ID])
				switch {
				case sub.Score != nil:
					cell.Kind = CellScore
					cell.Score = *sub.Score
					rowTotal += *sub.Score
					row.GradedCount++
					book.TotalGraded++
				case cell.Late:
					cell.Kind = CellLate
					book.TotalPending++
				default:
					cell.Kind = CellPending
					book.TotalPending++
				}
			}
			row.Cells[a.ID] = cell
		}

		if row.GradedCount > 0 {
			row.Average = rowTotal / float64(row.GradedCount)
			if rated == 0 {
				book.HighestAverage = row.Average
				book.LowestAverage = row.Average
			} else {
				if row.Average > book.HighestAverage {
					book.HighestAverage = row.Average
				}
				if row.Average < book.LowestAverage {
					book.LowestAverage = row.Average
				}
			}
			averagesTotal += row.Average
			rated++
		}

		book.Rows = append(book.Rows, row)
	}

	if rated > 0 {
		book.ClassAverage = averagesTotal / float64(rated)
	}

	return book
}
