package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
	"github.com/openlearn-dev/lms-admin-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req dto.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
}

// CourseHandler exposes catalog management endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List godoc
// @Summary Course catalog
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Create godoc
// @Summary Add a catalog entry
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Replace a catalog entry
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Remove a catalog entry
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
