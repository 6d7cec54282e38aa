package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

type providerStore interface {
	Providers(ctx context.Context) ([]models.Provider, error)
	CreateProvider(ctx context.Context, provider models.Provider) (*models.Provider, error)
	UpdateProvider(ctx context.Context, id string, provider models.Provider) (*models.Provider, error)
	DeleteProvider(ctx context.Context, id string) error
}

// ProviderService manages content providers and their course assignments.
type ProviderService struct {
	store  providerStore
	logger *zap.Logger
}

// NewProviderService constructs a ProviderService.
func NewProviderService(store providerStore, logger *zap.Logger) *ProviderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderService{store: store, logger: logger}
}

// List returns all providers.
func (s *ProviderService) List(ctx context.Context) ([]models.Provider, error) {
	providers, err := s.store.Providers(ctx)
	if err != nil {
		return nil, err
	}
	if providers == nil {
		providers = []models.Provider{}
	}
	return providers, nil
}

// Create registers a provider.
func (s *ProviderService) Create(ctx context.Context, req dto.ProviderRequest) (*models.Provider, error) {
	created, err := s.store.CreateProvider(ctx, models.Provider{
		Name:      req.Name,
		Contact:   req.Contact,
		CourseIDs: req.CourseIDs,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("provider created", zap.String("provider_id", created.ID))
	return created, nil
}

// Update replaces a provider, including course assignments.
func (s *ProviderService) Update(ctx context.Context, id string, req dto.ProviderRequest) (*models.Provider, error) {
	return s.store.UpdateProvider(ctx, id, models.Provider{
		Name:      req.Name,
		Contact:   req.Contact,
		CourseIDs: req.CourseIDs,
	})
}

// Delete removes a provider.
func (s *ProviderService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProvider(ctx, id); err != nil {
		return err
	}
	s.logger.Info("provider deleted", zap.String("provider_id", id))
	return nil
}
