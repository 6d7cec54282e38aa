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

type learnerService interface {
	Create(ctx context.Context, req dto.CreateSessionRequest) (*dto.SessionResponse, *models.PageMeta, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error)
	Next(ctx context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error)
	Prev(ctx context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error)
	Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*dto.SessionResponse, *models.PageMeta, error)
	Close(ctx context.Context, id string) error
}

// LearnerHandler exposes browse sessions over the progress collection.
type LearnerHandler struct {
	service learnerService
}

// NewLearnerHandler constructs the handler.
func NewLearnerHandler(service learnerService) *LearnerHandler {
	return &LearnerHandler{service: service}
}

// CreateSession godoc
// @Summary Open a browse session over learner progress
// @Tags Learners
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session filters"
// @Success 201 {object} response.Envelope
// @Router /learners/sessions [post]
func (h *LearnerHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	session, meta, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, session, meta)
}

// GetSession godoc
// @Summary Current page of a browse session
// @Tags Learners
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /learners/sessions/{id} [get]
func (h *LearnerHandler) GetSession(c *gin.Context) {
	session, meta, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, meta)
}

// NextPage godoc
// @Summary Advance a browse session to the next page
// @Tags Learners
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /learners/sessions/{id}/next [post]
func (h *LearnerHandler) NextPage(c *gin.Context) {
	session, meta, err := h.service.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, meta)
}

// PrevPage godoc
// @Summary Step a browse session back to the previous page
// @Tags Learners
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /learners/sessions/{id}/prev [post]
func (h *LearnerHandler) PrevPage(c *gin.Context) {
	session, meta, err := h.service.Prev(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, meta)
}

// UpdateSession godoc
// @Summary Change session filters or page size
// @Tags Learners
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "New filters"
// @Success 200 {object} response.Envelope
// @Router /learners/sessions/{id} [patch]
func (h *LearnerHandler) UpdateSession(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	session, meta, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, meta)
}

// CloseSession godoc
// @Summary Close a browse session
// @Tags Learners
// @Param id path string true "Session ID"
// @Success 204
// @Router /learners/sessions/{id} [delete]
func (h *LearnerHandler) CloseSession(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
