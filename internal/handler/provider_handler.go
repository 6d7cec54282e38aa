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

type providerService interface {
	List(ctx context.Context) ([]models.Provider, error)
	Create(ctx context.Context, req dto.ProviderRequest) (*models.Provider, error)
	Update(ctx context.Context, id string, req dto.ProviderRequest) (*models.Provider, error)
	Delete(ctx context.Context, id string) error
}

// ProviderHandler exposes provider management endpoints.
type ProviderHandler struct {
	service providerService
}

// NewProviderHandler constructs the handler.
func NewProviderHandler(service providerService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// List godoc
// @Summary List content providers
// @Tags Providers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, providers, nil)
}

// Create godoc
// @Summary Register a content provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param payload body dto.ProviderRequest true "Provider"
// @Success 201 {object} response.Envelope
// @Router /providers [post]
func (h *ProviderHandler) Create(c *gin.Context) {
	var req dto.ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	provider, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, provider)
}

// Update godoc
// @Summary Replace a provider and its course assignments
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "Provider ID"
// @Param payload body dto.ProviderRequest true "Provider"
// @Success 200 {object} response.Envelope
// @Router /providers/{id} [put]
func (h *ProviderHandler) Update(c *gin.Context) {
	var req dto.ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	provider, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, provider, nil)
}

// Delete godoc
// @Summary Remove a provider
// @Tags Providers
// @Param id path string true "Provider ID"
// @Success 204
// @Router /providers/{id} [delete]
func (h *ProviderHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
