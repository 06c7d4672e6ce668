package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/models"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
)

type catalogRepoStub struct {
	courses    []models.Course
	total      int
	err        error
	lastFilter models.CourseFilter
}

func (s *catalogRepoStub) List(_ context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	s.lastFilter = filter
	return s.courses, s.total, s.err
}

func (s *catalogRepoStub) ListByIDs(_ context.Context, _ []string) ([]models.Course, error) {
	return s.courses, s.err
}

func TestCatalogServiceListAppliesDefaults(t *testing.T) {
	repo := &catalogRepoStub{
		courses: []models.Course{testCourse("CS101", "Intro to CS", 3, models.DifficultyBeginner,
			testSection("CS101-A", "Rivera", models.FormatInPerson, 10,
				testSlot(models.Monday, "09:00", "10:30")))},
		total: 42,
	}
	svc := NewCatalogService(repo, nil, zap.NewNop())

	courses, pagination, err := svc.List(context.Background(), dto.CourseListQuery{})
	require.NoError(t, err)

	assert.Len(t, courses, 1)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.PageSize)
	require.NotNil(t, pagination)
	assert.Equal(t, 42, pagination.TotalCount)
}

func TestCatalogServiceListClampsPageSize(t *testing.T) {
	repo := &catalogRepoStub{}
	svc := NewCatalogService(repo, nil, zap.NewNop())

	_, _, err := svc.List(context.Background(), dto.CourseListQuery{Page: -3, PageSize: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.PageSize)
}

func TestCatalogServiceListWithoutBackend(t *testing.T) {
	svc := NewCatalogService(nil, nil, zap.NewNop())

	_, _, err := svc.List(context.Background(), dto.CourseListQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDisabled.Code, appErrors.FromError(err).Code)
}
