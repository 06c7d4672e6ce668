package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/models"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
)

// CatalogRepository is the persistence contract for the course catalog.
type CatalogRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

// CatalogService exposes read access to the course catalog.
type CatalogService struct {
	repo    CatalogRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCatalogService constructs a catalog service.
func NewCatalogService(repo CatalogRepository, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, metrics: metrics, logger: logger}
}

// List returns catalog courses matching the query along with pagination info.
func (s *CatalogService) List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, *models.Pagination, error) {
	if s.repo == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrDisabled, "course catalog is not configured")
	}

	filter := models.CourseFilter{
		Search:     query.Search,
		Difficulty: models.Difficulty(query.Difficulty),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	start := time.Now()
	courses, total, err := s.repo.List(ctx, filter)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("catalog_list", time.Since(start))
	}
	if err != nil {
		s.logger.Error("failed to list catalog courses", zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return courses, pagination, nil
}

// ListByIDs loads the given courses with their sections and time slots.
func (s *CatalogService) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if s.repo == nil {
		return nil, appErrors.Clone(appErrors.ErrDisabled, "course catalog is not configured")
	}
	start := time.Now()
	courses, err := s.repo.ListByIDs(ctx, ids)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("catalog_list_by_ids", time.Since(start))
	}
	if err != nil {
		s.logger.Error("failed to load courses by id", zap.Error(err))
		return nil, err
	}
	return courses, nil
}
