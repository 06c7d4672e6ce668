package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/models"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
)

func exportRequest() dto.OptimizeScheduleRequest {
	return dto.OptimizeScheduleRequest{
		StudentID: "S42",
		Courses: []models.Course{
			testCourse("CS201", "Data Structures", 3, models.DifficultyIntermediate,
				testSection("CS201-A", "Rivera", models.FormatHybrid, 25,
					testSlot(models.Monday, "09:00", "10:30"),
					testSlot(models.Wednesday, "09:00", "10:30"))),
		},
	}
}

func TestExportScheduleCSV(t *testing.T) {
	optimizer := newOptimizerFixture(t, ScheduleOptimizerConfig{}, nil, nil)
	svc := NewExportService(optimizer, zap.NewNop(), true)

	result, err := svc.ExportSchedule(context.Background(), exportRequest(), ExportCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "timetable-s42.csv", result.Filename)

	body := string(result.Data)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3) // header plus one row per weekly meeting
	assert.Equal(t, "Course,Section,Professor,Format,Day,Start,End,Credits", lines[0])
	assert.Contains(t, lines[1], "CS201 Data Structures")
	assert.Contains(t, lines[1], "Monday")
	assert.Contains(t, lines[2], "Wednesday")
}

func TestExportSchedulePDF(t *testing.T) {
	optimizer := newOptimizerFixture(t, ScheduleOptimizerConfig{}, nil, nil)
	svc := NewExportService(optimizer, zap.NewNop(), true)

	result, err := svc.ExportSchedule(context.Background(), exportRequest(), ExportPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "timetable-s42.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportScheduleUnsupportedFormat(t *testing.T) {
	optimizer := newOptimizerFixture(t, ScheduleOptimizerConfig{}, nil, nil)
	svc := NewExportService(optimizer, zap.NewNop(), true)

	_, err := svc.ExportSchedule(context.Background(), exportRequest(), ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportScheduleDisabled(t *testing.T) {
	optimizer := newOptimizerFixture(t, ScheduleOptimizerConfig{}, nil, nil)
	svc := NewExportService(optimizer, zap.NewNop(), false)

	_, err := svc.ExportSchedule(context.Background(), exportRequest(), ExportCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDisabled.Code, appErrors.FromError(err).Code)
}

func TestExportSchedulePropagatesOptimizerError(t *testing.T) {
	optimizer := newOptimizerFixture(t, ScheduleOptimizerConfig{}, nil, nil)
	svc := NewExportService(optimizer, zap.NewNop(), true)

	_, err := svc.ExportSchedule(context.Background(), dto.OptimizeScheduleRequest{}, ExportCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
