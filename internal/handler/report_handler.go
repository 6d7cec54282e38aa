package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/middleware"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
	"github.com/openlearn-dev/lms-admin-api/pkg/response"
)

type reportService interface {
	Enqueue(ctx context.Context, createdBy string, req dto.ExportRequest) (*models.ExportJob, error)
	Job(ctx context.Context, id string) (*models.ExportJob, error)
	Jobs(ctx context.Context) []models.ExportJob
	Download(ctx context.Context, token string) (*os.File, string, error)
}

// ReportHandler exposes export job endpoints and the signed download route.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Export godoc
// @Summary Queue a full report export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export filters"
// @Success 202 {object} response.Envelope
// @Router /reports/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	createdBy := ""
	if claims := middleware.CurrentUser(c); claims != nil {
		createdBy = claims.UserID
	}
	job, err := h.service.Enqueue(c.Request.Context(), createdBy, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// ListJobs godoc
// @Summary List export jobs
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/jobs [get]
func (h *ReportHandler) ListJobs(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Jobs(c.Request.Context()), nil)
}

// GetJob godoc
// @Summary Export job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/jobs/{id} [get]
func (h *ReportHandler) GetJob(c *gin.Context) {
	job, err := h.service.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Reports
// @Produce text/csv
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, name, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", contentTypeFor(name))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func contentTypeFor(name string) string {
	if len(name) > 4 && name[len(name)-4:] == ".pdf" {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}
