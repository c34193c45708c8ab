package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/observability"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

// engagementWindowDays bounds the weekly engagement series to eight weeks.
const engagementWindowDays = 56

// AdminStatsService aggregates platform-wide statistics for the admin console.
type AdminStatsService interface {
	Summary(ctx context.Context) (dto.AdminStatsResponse, error)
}

type adminStatsService struct {
	repo     repository.AdminStatsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewAdminStatsService constructs the statistics service.
func NewAdminStatsService(repo repository.AdminStatsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminStatsService {
	return &adminStatsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_stats_service").Logger(),
		tracer:   otel.Tracer("github.com/tdnguyen-dev/classroom-go-api/internal/service/admin_stats"),
		now:      time.Now,
	}
}

func (s *adminStatsService) Summary(ctx context.Context) (dto.AdminStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stats.aggregate", trace.WithAttributes(
		attribute.String("stats.cache_key", adminSummaryKey),
	))
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, adminSummaryKey).Result(); err == nil {
			var response dto.AdminStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CacheLookups().WithLabelValues("admin_summary", "hit").Inc()
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
			span.RecordError(err)
		}
		observability.CacheLookups().WithLabelValues("admin_summary", "miss").Inc()
	}

	teachers, err := s.repo.CountUsersByRole(ctx, models.RoleTeacher)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_teachers_failed")
		return dto.AdminStatsResponse{}, err
	}

	students, err := s.repo.CountUsersByRole(ctx, models.RoleStudent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_students_failed")
		return dto.AdminStatsResponse{}, err
	}

	admins, err := s.repo.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		span.RecordError(err)
		return dto.AdminStatsResponse{}, err
	}

	active, err := s.repo.CountActiveUsers(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.AdminStatsResponse{}, err
	}

	classes, err := s.repo.CountClasses(ctx, "")
	if err != nil {
		span.RecordError(err)
		return dto.AdminStatsResponse{}, err
	}

	submissions, err := s.repo.ListSubmissionsWithAssignments(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return dto.AdminStatsResponse{}, err
	}

	response := s.buildSummary(submissions)
	response.TotalUsers = teachers + students + admins
	response.ActiveUsers = active
	response.TotalTeachers = teachers
	response.TotalStudents = students
	response.TotalClasses = classes

	span.SetAttributes(
		attribute.Int64("stats.total_users", response.TotalUsers),
		attribute.Int("stats.submission_count", len(submissions)),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, adminSummaryKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *adminStatsService) buildSummary(submissions []models.Submission) dto.AdminStatsResponse {
	now := s.now()
	cutoff := now.AddDate(0, 0, -engagementWindowDays)

	buckets := map[string]int{
		"90-100": 0,
		"75-89":  0,
		"60-74":  0,
		"0-59":   0,
	}
	weekly := map[time.Time]int{}

	var graded int64
	var scoreTotal float64

	for _, submission := range submissions {
		if submission.Score != nil {
			graded++
			maxScore := submission.Assignment.MaxScore
			if maxScore <= 0 {
				maxScore = models.DefaultMaxScore
			}
			percent := (*submission.Score / maxScore) * 100
			scoreTotal += percent
			switch {
			case percent >= 90:
				buckets["90-100"]++
			case percent >= 75:
				buckets["75-89"]++
			case percent >= 60:
				buckets["60-74"]++
			default:
				buckets["0-59"]++
			}
		}

		if submission.CreatedAt.After(cutoff) {
			weekly[startOfWeek(submission.CreatedAt)]++
		}
	}

	weeks := make([]time.Time, 0, len(weekly))
	for week := range weekly {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	engagement := make([]dto.WeeklyEngagement, 0, len(weeks))
	for _, week := range weeks {
		engagement = append(engagement, dto.WeeklyEngagement{WeekStart: week, Submissions: weekly[week]})
	}

	distribution := []dto.GradeBucket{
		{Label: "90-100", Count: buckets["90-100"]},
		{Label: "75-89", Count: buckets["75-89"]},
		{Label: "60-74", Count: buckets["60-74"]},
		{Label: "0-59", Count: buckets["0-59"]},
	}

	response := dto.AdminStatsResponse{
		TotalSubmissions:  int64(len(submissions)),
		GradedSubmissions: graded,
		GradeDistribution: distribution,
		WeeklyEngagement:  engagement,
		GeneratedAt:       now,
	}
	if graded > 0 {
		response.AverageScore = scoreTotal / float64(graded)
	}

	return response
}

func startOfWeek(t time.Time) time.Time {
	utc := t.UTC()
	weekday := int(utc.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := utc.AddDate(0, 0, -(weekday - 1))
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}
