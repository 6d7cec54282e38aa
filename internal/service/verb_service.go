package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

type verbStore interface {
	Verbs(ctx context.Context) ([]models.Verb, error)
	CreateVerb(ctx context.Context, verb models.Verb) (*models.Verb, error)
	UpdateVerb(ctx context.Context, id string, verb models.Verb) (*models.Verb, error)
	DeleteVerb(ctx context.Context, id string) error
}

// VerbService manages the xAPI verb configuration.
type VerbService struct {
	store  verbStore
	logger *zap.Logger
}

// NewVerbService constructs a VerbService.
func NewVerbService(store verbStore, logger *zap.Logger) *VerbService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerbService{store: store, logger: logger}
}

// List returns all configured verbs.
func (s *VerbService) List(ctx context.Context) ([]models.Verb, error) {
	verbs, err := s.store.Verbs(ctx)
	if err != nil {
		return nil, err
	}
	if verbs == nil {
		verbs = []models.Verb{}
	}
	return verbs, nil
}

// Create adds a verb configuration.
func (s *VerbService) Create(ctx context.Context, req dto.VerbRequest) (*models.Verb, error) {
	created, err := s.store.CreateVerb(ctx, models.Verb{
		IRI:     req.IRI,
		Display: req.Display,
		Enabled: req.Enabled,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("verb created", zap.String("verb_id", created.ID), zap.String("iri", req.IRI))
	return created, nil
}

// Update replaces a verb configuration.
func (s *VerbService) Update(ctx context.Context, id string, req dto.VerbRequest) (*models.Verb, error) {
	return s.store.UpdateVerb(ctx, id, models.Verb{
		IRI:     req.IRI,
		Display: req.Display,
		Enabled: req.Enabled,
	})
}

// Delete removes a verb configuration.
func (s *VerbService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteVerb(ctx, id)
}
