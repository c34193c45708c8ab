package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/observability"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

const (
	gradebookKeyFormat       = "gradebook:class:%d"
	assignmentStatsKeyFormat = "stats:assignment:%d"
	adminSummaryKey          = "stats:admin:summary"
)

// CacheInvalidator drops derived views after a write so the next read
// recomputes from the database. Writes never patch cached aggregates in
// place; invalidate-then-refetch is the only consistency mechanism.
type CacheInvalidator interface {
	InvalidateGradebook(ctx context.Context, classID uint)
	InvalidateAssignmentStats(ctx context.Context, assignmentID uint)
	InvalidateAdminSummary(ctx context.Context)
}

// GradebookService assembles the per-class score matrix.
type GradebookService interface {
	CacheInvalidator
	Gradebook(ctx context.Context, classID uint) (dto.GradebookResponse, error)
}

type gradebookService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradebookService builds the gradebook aggregator.
func NewGradebookService(classes repository.ClassRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradebookService) Gradebook(ctx context.Context, classID uint) (dto.GradebookResponse, error) {
	cacheKey := fmt.Sprintf(gradebookKeyFormat, classID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.GradebookResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CacheLookups().WithLabelValues("gradebook", "hit").Inc()
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read gradebook cache")
		}
		observability.CacheLookups().WithLabelValues("gradebook", "miss").Inc()
	}

	response, err := s.build(ctx, classID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store gradebook cache")
			}
		}
	}

	return response, nil
}

func (s *gradebookService) build(ctx context.Context, classID uint) (dto.GradebookResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		return dto.GradebookResponse{}, ErrClassNotFound
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	members, err := s.classes.ListMembers(ctx, classID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	lites := make([]dto.AssignmentLite, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
		lites = append(lites, dto.AssignmentLite{
			ID:       assignment.ID,
			Title:    assignment.Title,
			DueDate:  assignment.DueDate,
			MaxScore: assignment.MaxScore,
		})
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	return dto.GradebookResponse{
		ClassID:     classID,
		Assignments: lites,
		Book:        derive.BuildGradebook(assignments, members, submissions),
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *gradebookService) InvalidateGradebook(ctx context.Context, classID uint) {
	s.drop(ctx, fmt.Sprintf(gradebookKeyFormat, classID))
}

func (s *gradebookService) InvalidateAssignmentStats(ctx context.Context, assignmentID uint) {
	s.drop(ctx, fmt.Sprintf(assignmentStatsKeyFormat, assignmentID))
}

func (s *gradebookService) InvalidateAdminSummary(ctx context.Context) {
	s.drop(ctx, adminSummaryKey)
}

func (s *gradebookService) drop(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to invalidate cache key")
	}
}
