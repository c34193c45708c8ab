package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	// SubjectSubmissionCreated is published whenever a student hands in work.
	SubjectSubmissionCreated = "classroom.submission.created"
	// SubjectSubmissionGraded is published whenever a grade is attached.
	SubjectSubmissionGraded = "classroom.submission.graded"
)

// SubmissionEvent is the wire payload published to the message broker.
type SubmissionEvent struct {
	SubmissionID uint      `json:"submission_id"`
	AssignmentID uint      `json:"assignment_id"`
	ClassID      uint      `json:"class_id"`
	StudentID    uint      `json:"student_id"`
	Status       string    `json:"status"`
	Score        *float64  `json:"score,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher fans domain events out to interested consumers. Publishing
// is best effort; a broker outage never fails the originating request.
type EventPublisher interface {
	PublishSubmissionEvent(subject string, event SubmissionEvent)
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewEventPublisher wraps a NATS connection. A nil connection yields a
// publisher that drops every event, which keeps local development working
// without a broker.
func NewEventPublisher(conn *nats.Conn, logger zerolog.Logger) EventPublisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) PublishSubmissionEvent(subject string, event SubmissionEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode submission event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish submission event")
	}
}
