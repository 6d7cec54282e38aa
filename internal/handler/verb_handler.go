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

type verbService interface {
	List(ctx context.Context) ([]models.Verb, error)
	Create(ctx context.Context, req dto.VerbRequest) (*models.Verb, error)
	Update(ctx context.Context, id string, req dto.VerbRequest) (*models.Verb, error)
	Delete(ctx context.Context, id string) error
}

// VerbHandler exposes xAPI verb configuration endpoints.
type VerbHandler struct {
	service verbService
}

// NewVerbHandler constructs the handler.
func NewVerbHandler(service verbService) *VerbHandler {
	return &VerbHandler{service: service}
}

// List godoc
// @Summary List configured xAPI verbs
// @Tags Verbs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /verbs [get]
func (h *VerbHandler) List(c *gin.Context) {
	verbs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verbs, nil)
}

// Create godoc
// @Summary Add a verb configuration
// @Tags Verbs
// @Accept json
// @Produce json
// @Param payload body dto.VerbRequest true "Verb"
// @Success 201 {object} response.Envelope
// @Router /verbs [post]
func (h *VerbHandler) Create(c *gin.Context) {
	var req dto.VerbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	verb, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, verb)
}

// Update godoc
// @Summary Replace a verb configuration
// @Tags Verbs
// @Accept json
// @Produce json
// @Param id path string true "Verb ID"
// @Param payload body dto.VerbRequest true "Verb"
// @Success 200 {object} response.Envelope
// @Router /verbs/{id} [put]
func (h *VerbHandler) Update(c *gin.Context) {
	var req dto.VerbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	verb, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verb, nil)
}

// Delete godoc
// @Summary Remove a verb configuration
// @Tags Verbs
// @Param id path string true "Verb ID"
// @Success 204
// @Router /verbs/{id} [delete]
func (h *VerbHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
