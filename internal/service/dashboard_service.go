package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/aggregate"
	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	"github.com/openlearn-dev/lms-admin-api/internal/paging"
)

type progressSource interface {
	ProgressPage(ctx context.Context, courseID, token string, limit int) (paging.Page[models.ProgressRecord], error)
	Courses(ctx context.Context) ([]models.Course, error)
}

// DashboardServiceConfig tunes dashboard aggregation.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	// SampleSize caps how many progress records one dashboard computation
	// loads from the backend. The summary is explicitly a summary of this
	// window, not of the full collection.
	SampleSize int
}

// DashboardService composes the aggregated dashboard payload from progress
// records fetched upstream.
type DashboardService struct {
	source progressSource
	cache  *CacheService
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Source progressSource
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 1000
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		source: params.Source,
		cache:  params.Cache,
		logger: logger,
		cfg:    cfg,
	}
}

// Summary returns the aggregated dashboard and reports cache utilisation.
func (s *DashboardService) Summary(ctx context.Context, courseID string) (*dto.DashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dash:summary:%s", courseID)
	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	summary, err := s.compose(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, false, nil
}

// Invalidate drops cached summaries, e.g. after catalog mutations.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:summary:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context, courseID string) (*dto.DashboardResponse, error) {
	page, err := s.source.ProgressPage(ctx, courseID, "", s.cfg.SampleSize)
	if err != nil {
		return nil, err
	}

	// The catalog is only needed for titles; a failure degrades labels, not
	// numbers.
	var courses []models.Course
	if courseList, err := s.source.Courses(ctx); err != nil {
		s.logger.Warn("course catalog fetch failed, dashboard titles degraded", zap.Error(err))
	} else {
		courses = courseList
	}

	return &dto.DashboardResponse{
		CourseID:       courseID,
		SampledRecords: len(page.Items),
		Stats:          aggregate.Progress(page.Items, courses),
	}, nil
}
