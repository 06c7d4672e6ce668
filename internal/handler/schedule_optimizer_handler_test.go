package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/middleware"
	"github.com/campusworks/timetable-api/internal/models"
	"github.com/campusworks/timetable-api/internal/service"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
	"github.com/campusworks/timetable-api/pkg/response"
)

type optimizerStub struct {
	result    *dto.ScheduleOptimization
	fromCache bool
	err       error
	lastReq   dto.OptimizeScheduleRequest
}

func (s *optimizerStub) Optimize(_ context.Context, req dto.OptimizeScheduleRequest) (*dto.ScheduleOptimization, bool, error) {
	s.lastReq = req
	return s.result, s.fromCache, s.err
}

type exporterStub struct {
	enabled bool
	result  *service.ExportResult
	err     error
}

func (s exporterStub) Enabled() bool { return s.enabled }

func (s exporterStub) ExportSchedule(_ context.Context, _ dto.OptimizeScheduleRequest, _ service.ExportFormat) (*service.ExportResult, error) {
	return s.result, s.err
}

func stubOptimization() *dto.ScheduleOptimization {
	return &dto.ScheduleOptimization{
		StudentID: "student-1",
		Schedule: dto.OptimizedSchedule{
			ID:           "sched-1",
			BalanceScore: 87,
		},
		OverallScore:    87,
		Recommendations: []string{"Your schedule looks well balanced. Good luck this semester!"},
		GeneratedAt:     time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func performOptimize(t *testing.T, h *ScheduleOptimizerHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/timetable/optimize", h.Optimize)

	req := httptest.NewRequest(http.MethodPost, "/timetable/optimize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptimizeHandlerSuccess(t *testing.T) {
	h := &ScheduleOptimizerHandler{optimizer: &optimizerStub{result: stubOptimization(), fromCache: true}}

	w := performOptimize(t, h, `{"studentId":"student-1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	assert.Nil(t, envelope.Error)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result dto.ScheduleOptimization
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "student-1", result.StudentID)
	assert.Equal(t, 87, result.OverallScore)

	require.NotNil(t, envelope.Meta)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestOptimizeHandlerDefaultsStudentFromClaims(t *testing.T) {
	stub := &optimizerStub{result: stubOptimization()}
	h := &ScheduleOptimizerHandler{optimizer: stub}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-7"})
	})
	r.POST("/timetable/optimize", h.Optimize)

	req := httptest.NewRequest(http.MethodPost, "/timetable/optimize", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-7", stub.lastReq.StudentID)
}

func TestOptimizeHandlerKeepsExplicitStudentID(t *testing.T) {
	stub := &optimizerStub{result: stubOptimization()}
	h := &ScheduleOptimizerHandler{optimizer: stub}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-7"})
	})
	r.POST("/timetable/optimize", h.Optimize)

	req := httptest.NewRequest(http.MethodPost, "/timetable/optimize", bytes.NewBufferString(`{"studentId":"student-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-1", stub.lastReq.StudentID)
}

func TestOptimizeHandlerRejectsMalformedJSON(t *testing.T) {
	h := &ScheduleOptimizerHandler{optimizer: &optimizerStub{result: stubOptimization()}}

	w := performOptimize(t, h, `{"studentId":`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestOptimizeHandlerPropagatesServiceError(t *testing.T) {
	h := &ScheduleOptimizerHandler{optimizer: &optimizerStub{err: appErrors.Clone(appErrors.ErrNotFound, "course CS999 not found in catalog")}}

	w := performOptimize(t, h, `{"studentId":"student-1","courseIds":["CS999"]}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func performExport(t *testing.T, h *ScheduleOptimizerHandler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/timetable/optimize/export", h.Export)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExportHandlerStreamsCSV(t *testing.T) {
	h := &ScheduleOptimizerHandler{
		optimizer: &optimizerStub{result: stubOptimization()},
		exporter: exporterStub{enabled: true, result: &service.ExportResult{
			ContentType: "text/csv",
			Filename:    "timetable-student-1.csv",
			Data:        []byte("Course,Section\n"),
		}},
	}

	w := performExport(t, h, "/timetable/optimize/export?format=csv", `{"studentId":"student-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="timetable-student-1.csv"`)
	assert.Equal(t, "Course,Section\n", w.Body.String())
}

func TestExportHandlerDisabled(t *testing.T) {
	h := &ScheduleOptimizerHandler{
		optimizer: &optimizerStub{result: stubOptimization()},
		exporter:  exporterStub{enabled: false},
	}

	w := performExport(t, h, "/timetable/optimize/export", `{"studentId":"student-1"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrDisabled.Code, envelope.Error.Code)
}

func TestExportHandlerWithoutExporter(t *testing.T) {
	h := &ScheduleOptimizerHandler{optimizer: &optimizerStub{result: stubOptimization()}}

	w := performExport(t, h, "/timetable/optimize/export", `{"studentId":"student-1"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}
