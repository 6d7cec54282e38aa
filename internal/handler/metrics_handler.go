package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn-dev/lms-admin-api/internal/service"
	"github.com/openlearn-dev/lms-admin-api/pkg/response"
)

// MetricsHandler exposes the operational snapshot for the admin surface.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs the handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot godoc
// @Summary Gateway runtime statistics
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
