package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

type courseStore interface {
	Courses(ctx context.Context) ([]models.Course, error)
	CreateCourse(ctx context.Context, course models.Course) (*models.Course, error)
	UpdateCourse(ctx context.Context, id string, course models.Course) (*models.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// CourseService manages the course catalog through the upstream backend.
// Mutations invalidate the dashboard cache since its numbers key off courses.
type CourseService struct {
	store     courseStore
	dashboard dashboardInvalidator
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(store courseStore, dashboard dashboardInvalidator, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{store: store, dashboard: dashboard, logger: logger}
}

// List returns the course catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.store.Courses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Create adds a catalog entry.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	created, err := s.store.CreateCourse(ctx, models.Course{
		CourseID: req.CourseID,
		Title:    req.Title,
		Provider: req.Provider,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("course created", zap.String("course_id", created.CourseID))
	return created, nil
}

// Update replaces a catalog entry.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseRequest) (*models.Course, error) {
	updated, err := s.store.UpdateCourse(ctx, id, models.Course{
		CourseID: req.CourseID,
		Title:    req.Title,
		Provider: req.Provider,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a catalog entry.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}
