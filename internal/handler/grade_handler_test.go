package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen-dev/classroom-go-api/internal/derive"
	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/handler"
	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
)

type mockGradingService struct {
	lastSubmissionID uint
	lastPayload      dto.GradeRequest
	lastActor        service.ActivityActor
	response         dto.SubmissionResponse
	err              error
}

func (m *mockGradingService) Grade(_ context.Context, submissionID uint, payload dto.GradeRequest, actor service.ActivityActor) (dto.SubmissionResponse, error) {
	m.lastSubmissionID = submissionID
	m.lastPayload = payload
	m.lastActor = actor
	if m.err != nil {
		return dto.SubmissionResponse{}, m.err
	}
	return m.response, nil
}

type mockSubmissionService struct {
	response dto.SubmissionResponse
	err      error
}

func (m *mockSubmissionService) ListForAssignment(context.Context, uint, service.ActivityActor) ([]dto.SubmissionResponse, error) {
	return nil, nil
}

func (m *mockSubmissionService) Get(context.Context, uint, service.ActivityActor) (dto.SubmissionResponse, error) {
	if m.err != nil {
		return dto.SubmissionResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockSubmissionService) Submit(context.Context, uint, uint, dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	return dto.SubmissionResponse{}, nil
}

func (m *mockSubmissionService) Stats(context.Context, uint) (dto.AssignmentStatsResponse, error) {
	return dto.AssignmentStatsResponse{}, nil
}

func newGradeApp(grading *mockGradingService, submissions *mockSubmissionService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/submissions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", role)
		return c.Next()
	})
	handler.NewGradeHandler(grading, submissions, zerolog.Nop()).Register(group)
	return app
}

func TestGradeHandler_GradeSuccess(t *testing.T) {
	score := 8.5
	grading := &mockGradingService{response: dto.SubmissionResponse{
		ID:     12,
		Status: derive.StatusGraded,
		Score:  &score,
	}}
	app := newGradeApp(grading, &mockSubmissionService{}, "teacher")

	payload := bytes.NewBufferString(`{"score": 8.5, "feedback": "Nice"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/submissions/12/grade", payload)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "submission graded", body.Message)
	require.Equal(t, derive.StatusGraded, body.Data.Status)

	require.EqualValues(t, 12, grading.lastSubmissionID)
	require.InDelta(t, 8.5, grading.lastPayload.Score, 1e-9)
	require.EqualValues(t, 7, grading.lastActor.ID)
	require.Equal(t, "teacher", grading.lastActor.Role)
}

func TestGradeHandler_GradeStudentForbidden(t *testing.T) {
	app := newGradeApp(&mockGradingService{}, &mockSubmissionService{}, "student")

	payload := bytes.NewBufferString(`{"score": 5}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/submissions/12/grade", payload)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGradeHandler_GradeScoreExceedsMax(t *testing.T) {
	grading := &mockGradingService{err: service.ErrScoreExceedsMax}
	app := newGradeApp(grading, &mockSubmissionService{}, "teacher")

	payload := bytes.NewBufferString(`{"score": 11}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/submissions/12/grade", payload)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGradeHandler_GetNotFound(t *testing.T) {
	submissions := &mockSubmissionService{err: service.ErrSubmissionNotFound}
	app := newGradeApp(&mockGradingService{}, submissions, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGradeHandler_InvalidIdentifier(t *testing.T) {
	app := newGradeApp(&mockGradingService{}, &mockSubmissionService{}, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
