package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/middleware"
	"github.com/campusworks/timetable-api/internal/service"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
	"github.com/campusworks/timetable-api/pkg/response"
)

type scheduleOptimizer interface {
	Optimize(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.ScheduleOptimization, bool, error)
}

type scheduleExporter interface {
	Enabled() bool
	ExportSchedule(ctx context.Context, req dto.OptimizeScheduleRequest, format service.ExportFormat) (*service.ExportResult, error)
}

// ScheduleOptimizerHandler exposes timetable optimization endpoints.
type ScheduleOptimizerHandler struct {
	optimizer scheduleOptimizer
	exporter  scheduleExporter
}

// NewScheduleOptimizerHandler constructs the handler. The exporter is optional.
func NewScheduleOptimizerHandler(optimizer *service.ScheduleOptimizerService, exporter *service.ExportService) *ScheduleOptimizerHandler {
	h := &ScheduleOptimizerHandler{optimizer: optimizer}
	if exporter != nil {
		h.exporter = exporter
	}
	return h
}

// Optimize godoc
// @Summary Build an optimized weekly timetable
// @Description Runs the greedy optimizer over the candidate courses and returns the primary schedule, ranked alternatives and recommendations.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeScheduleRequest true "Optimization payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/optimize [post]
func (h *ScheduleOptimizerHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimization payload"))
		return
	}
	if req.StudentID == "" {
		if claims, ok := middleware.CurrentUser(c); ok {
			req.StudentID = claims.UserID
		}
	}

	result, fromCache, err := h.optimizer.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, fromCache)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the optimized timetable
// @Description Runs the optimizer and streams the primary schedule as CSV or PDF.
// @Tags Timetable
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Param payload body dto.OptimizeScheduleRequest true "Optimization payload"
// @Success 200 {file} file
// @Router /timetable/optimize/export [post]
func (h *ScheduleOptimizerHandler) Export(c *gin.Context) {
	if h.exporter == nil || !h.exporter.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrDisabled, "schedule exports are disabled"))
		return
	}

	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimization payload"))
		return
	}
	if req.StudentID == "" {
		if claims, ok := middleware.CurrentUser(c); ok {
			req.StudentID = claims.UserID
		}
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	result, err := h.exporter.ExportSchedule(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
