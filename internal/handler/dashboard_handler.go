package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/middleware"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
	"github.com/openlearn-dev/lms-admin-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, courseID string) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires the dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Aggregated progress dashboard
// @Tags Dashboard
// @Produce json
// @Param courseId query string false "Restrict to one course"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	courseID := strings.TrimSpace(c.Query("courseId"))
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
