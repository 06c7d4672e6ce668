package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/service"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
	"github.com/campusworks/timetable-api/pkg/response"
)

// CatalogHandler serves read endpoints for the course catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List godoc
// @Summary List catalog courses
// @Tags Catalog
// @Produce json
// @Param search query string false "Filter by course id or title"
// @Param difficulty query string false "Filter by difficulty tier"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var query dto.CourseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid catalog query"))
		return
	}

	courses, pagination, err := h.catalog.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}
