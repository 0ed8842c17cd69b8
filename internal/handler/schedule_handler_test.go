package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/middleware"
	"github.com/aptora/aptora-api/internal/models"
	"github.com/aptora/aptora-api/internal/scheduler"
	"github.com/aptora/aptora-api/internal/service"
	"github.com/aptora/aptora-api/pkg/response"
)

type assignmentReaderMock struct {
	pending []models.Assignment
}

func (m *assignmentReaderMock) ListPending(ctx context.Context, userID string) ([]models.Assignment, error) {
	return m.pending, nil
}

type availabilityReaderMock struct {
	slots []models.AvailabilitySlot
}

func (m *availabilityReaderMock) List(ctx context.Context, userID string) ([]models.AvailabilitySlot, error) {
	return m.slots, nil
}

type sessionStoreMock struct {
	sessions []models.StudySession
}

func (m *sessionStoreMock) List(ctx context.Context, userID string, from, to *time.Time) ([]models.StudySession, error) {
	return m.sessions, nil
}

func (m *sessionStoreMock) Get(ctx context.Context, userID, id string) (*models.StudySession, error) {
	return nil, sql.ErrNoRows
}

func (m *sessionStoreMock) ReplaceWindow(ctx context.Context, userID string, from, to time.Time, sessions []models.StudySession) error {
	return nil
}

func (m *sessionStoreMock) Update(ctx context.Context, s *models.StudySession) error {
	return nil
}

func (m *sessionStoreMock) Delete(ctx context.Context, userID, id string) error {
	return sql.ErrNoRows
}

func newScheduleHandlerFixture() *ScheduleHandler {
	engine := scheduler.NewEngine(scheduler.EngineConfig{PolicyPath: "./missing/policy.json"}, nil)
	// 2026-08-31 is a Monday.
	schedules := service.NewScheduleService(
		&assignmentReaderMock{pending: []models.Assignment{{
			ID:             "asg-1",
			UserID:         "user-1",
			Title:          "Essay draft",
			DueDate:        time.Date(2026, 9, 3, 23, 59, 0, 0, time.UTC),
			EstimatedHours: 4,
			Priority:       "high",
			Difficulty:     "medium",
		}}},
		&availabilityReaderMock{slots: []models.AvailabilitySlot{
			{ID: "av-0", UserID: "user-1", DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"},
			{ID: "av-1", UserID: "user-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		}},
		&sessionStoreMock{},
		engine,
		nil,
		nil,
		nil,
		nil,
	)
	exports := service.NewExportService(schedules, "Aptora Study Plan", nil, nil, nil)
	return NewScheduleHandler(schedules, exports)
}

func authedContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, "user-1")
	return c
}

func TestScheduleHandlerGenerate(t *testing.T) {
	handler := newScheduleHandlerFixture()
	w := httptest.NewRecorder()
	body, _ := json.Marshal(dto.GenerateScheduleRequest{StartDate: "2026-08-31", EndDate: "2026-09-06", Strategy: "greedy"})
	c := authedContext(t, w, http.MethodPost, "/schedules/generate", body)

	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.GenerateScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "greedy", envelope.Data.Strategy)
	assert.NotEmpty(t, envelope.Data.Sessions)
	assert.InDelta(t, 4.0, envelope.Data.TotalHoursScheduled, 1e-9)
}

func TestScheduleHandlerGenerateInvalidBody(t *testing.T) {
	handler := newScheduleHandlerFixture()
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/schedules/generate", []byte(`invalid`))

	handler.Generate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGenerateInvalidWindow(t *testing.T) {
	handler := newScheduleHandlerFixture()
	w := httptest.NewRecorder()
	body, _ := json.Marshal(dto.GenerateScheduleRequest{StartDate: "2026-09-06", EndDate: "2026-08-31"})
	c := authedContext(t, w, http.MethodPost, "/schedules/generate", body)

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
}

func TestScheduleHandlerUpdateSessionNotFound(t *testing.T) {
	handler := newScheduleHandlerFixture()
	w := httptest.NewRecorder()
	body, _ := json.Marshal(dto.UpdateSessionRequest{})
	c := authedContext(t, w, http.MethodPatch, "/schedules/sessions/ses-404", body)
	c.Params = gin.Params{{Key: "id", Value: "ses-404"}}

	handler.UpdateSession(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerExportCSV(t *testing.T) {
	handler := newScheduleHandlerFixture()
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodGet, "/schedules/export?format=csv", nil)

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
}
