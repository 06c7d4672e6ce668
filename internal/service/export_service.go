package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campusworks/timetable-api/internal/dto"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
	"github.com/campusworks/timetable-api/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

var scheduleExportHeaders = []string{"Course", "Section", "Professor", "Format", "Day", "Start", "End", "Credits"}

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	ContentType string
	Filename    string
	Data        []byte
}

// ExportService renders optimized schedules into downloadable documents.
type ExportService struct {
	optimizer *ScheduleOptimizerService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	enabled   bool
}

// NewExportService constructs the export service.
func NewExportService(optimizer *ScheduleOptimizerService, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		optimizer: optimizer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		enabled:   enabled,
	}
}

// Enabled reports whether exports are switched on.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled && s.optimizer != nil
}

// ExportSchedule runs the optimizer for the request and renders the primary
// schedule in the requested format.
func (s *ExportService) ExportSchedule(ctx context.Context, req dto.OptimizeScheduleRequest, format ExportFormat) (*ExportResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrDisabled, "schedule exports are disabled")
	}

	result, _, err := s.optimizer.Optimize(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset := scheduleDataset(result.Schedule)
	filename := fmt.Sprintf("timetable-%s", strings.ToLower(result.StudentID))

	switch format {
	case ExportCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			s.logger.Error("failed to render csv export", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return &ExportResult{ContentType: "text/csv", Filename: filename + ".csv", Data: data}, nil
	case ExportPDF:
		title := fmt.Sprintf("Weekly Timetable for %s", result.StudentID)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			s.logger.Error("failed to render pdf export", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return &ExportResult{ContentType: "application/pdf", Filename: filename + ".pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func scheduleDataset(schedule dto.OptimizedSchedule) export.Dataset {
	rows := make([]map[string]string, 0, len(schedule.Courses))
	for _, course := range schedule.Courses {
		for _, slot := range course.Section.TimeSlots {
			rows = append(rows, map[string]string{
				"Course":    fmt.Sprintf("%s %s", course.CourseID, course.Title),
				"Section":   course.Section.ID,
				"Professor": course.Section.Professor,
				"Format":    string(course.Section.Format),
				"Day":       string(slot.Day),
				"Start":     slot.StartTime,
				"End":       slot.EndTime,
				"Credits":   fmt.Sprintf("%d", course.Credits),
			})
		}
	}
	return export.Dataset{Headers: scheduleExportHeaders, Rows: rows}
}
