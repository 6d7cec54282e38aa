package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	"github.com/openlearn-dev/lms-admin-api/internal/paging"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
)

type progressPager interface {
	ProgressPage(ctx context.Context, courseID, token string, limit int) (paging.Page[models.ProgressRecord], error)
}

type sessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// browseSession binds one pagination controller to its filters and lease.
type browseSession struct {
	id         string
	courseID   string
	controller *paging.Controller[models.ProgressRecord]
	expiresAt  time.Time
}

// LearnerServiceConfig tunes browse session behaviour.
type LearnerServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	SessionTTL      time.Duration
}

// LearnerService keeps server-side browse sessions over the progress
// collection. Continuation cursors live inside each session's controller and
// never reach the client; the client only sees page indexes.
type LearnerService struct {
	pager   progressPager
	metrics sessionObserver
	logger  *zap.Logger
	cfg     LearnerServiceConfig
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*browseSession
}

// LearnerServiceParams groups constructor dependencies.
type LearnerServiceParams struct {
	Pager   progressPager
	Metrics sessionObserver
	Logger  *zap.Logger
	Config  LearnerServiceConfig
}

// NewLearnerService constructs a LearnerService with sane defaults.
func NewLearnerService(params LearnerServiceParams) *LearnerService {
	cfg := params.Config
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 200
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearnerService{
		pager:    params.Pager,
		metrics:  params.Metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*browseSession),
	}
}

// Create opens a browse session and loads its first page.
func (s *LearnerService) Create(ctx context.Context, req dto.CreateSessionRequest) (*dto.SessionResponse, *models.PageMeta, error) {
	pageSize := s.clampPageSize(req.PageSize)
	session := &browseSession{
		id:         uuid.NewString(),
		courseID:   req.CourseID,
		controller: paging.NewController(s.fetcher(req.CourseID), pageSize),
	}
	if err := session.controller.Reset(ctx); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	session.expiresAt = s.now().Add(s.cfg.SessionTTL)
	s.sessions[session.id] = session
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("browse session opened",
		zap.String("session_id", session.id),
		zap.String("course_id", req.CourseID),
		zap.Int("page_size", pageSize))
	return s.snapshot(session)
}

// Get returns the current page of an existing session.
func (s *LearnerService) Get(_ context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error) {
	session, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	return s.snapshot(session)
}

// Next advances the session to the following page.
func (s *LearnerService) Next(ctx context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error) {
	session, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	if err := session.controller.Next(ctx); err != nil {
		return nil, nil, err
	}
	return s.snapshot(session)
}

// Prev steps the session back to the previous page.
func (s *LearnerService) Prev(ctx context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error) {
	session, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	if err := session.controller.Prev(ctx); err != nil {
		return nil, nil, err
	}
	return s.snapshot(session)
}

// Update changes session filters or page size. Any change discards the
// recorded cursor chain and reloads from the first page.
func (s *LearnerService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*dto.SessionResponse, *models.PageMeta, error) {
	session, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	if req.CourseID != nil && *req.CourseID != session.courseID {
		pageSize := session.controller.PageSize()
		if req.PageSize != nil {
			pageSize = s.clampPageSize(*req.PageSize)
		}
		// A fresh controller drops the cursor chain wholesale; any response
		// still in flight on the old one lands on an orphan and is ignored.
		replacement := paging.NewController(s.fetcher(*req.CourseID), pageSize)
		if err := replacement.Reset(ctx); err != nil {
			return nil, nil, err
		}
		s.mu.Lock()
		session.courseID = *req.CourseID
		session.controller = replacement
		s.mu.Unlock()
		return s.snapshot(session)
	}

	if req.PageSize != nil {
		if err := session.controller.SetPageSize(ctx, s.clampPageSize(*req.PageSize)); err != nil {
			return nil, nil, err
		}
	}
	return s.snapshot(session)
}

// Close removes a session.
func (s *LearnerService) Close(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return appErrors.ErrSessionNotFound
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	return nil
}

// StartCleanup runs expiry sweeps until the context ends.
func (s *LearnerService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *LearnerService) sweep() {
	now := s.now()
	var expired int
	s.mu.Lock()
	for id, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, id)
			expired++
		}
	}
	s.mu.Unlock()
	for i := 0; i < expired; i++ {
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
	}
	if expired > 0 {
		s.logger.Info("expired browse sessions removed", zap.Int("count", expired))
	}
}

// lookup fetches a live session and renews its lease.
func (s *LearnerService) lookup(id string) (*browseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	if s.now().After(session.expiresAt) {
		delete(s.sessions, id)
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
		return nil, appErrors.ErrSessionNotFound
	}
	session.expiresAt = s.now().Add(s.cfg.SessionTTL)
	return session, nil
}

func (s *LearnerService) fetcher(courseID string) paging.FetchFunc[models.ProgressRecord] {
	return func(ctx context.Context, token string, limit int) (paging.Page[models.ProgressRecord], error) {
		return s.pager.ProgressPage(ctx, courseID, token, limit)
	}
}

func (s *LearnerService) snapshot(session *browseSession) (*dto.SessionResponse, *models.PageMeta, error) {
	s.mu.Lock()
	courseID := session.courseID
	expiresAt := session.expiresAt
	controller := session.controller
	s.mu.Unlock()

	items := controller.Items()
	if items == nil {
		items = []models.ProgressRecord{}
	}
	meta := &models.PageMeta{
		PageIndex: controller.PageIndex(),
		PageSize:  controller.PageSize(),
		HasNext:   controller.HasNext(),
		HasPrev:   controller.HasPrev(),
	}
	return &dto.SessionResponse{
		SessionID: session.id,
		CourseID:  courseID,
		Items:     items,
		ExpiresAt: expiresAt,
	}, meta, nil
}

func (s *LearnerService) clampPageSize(requested int) int {
	if requested <= 0 {
		return s.cfg.DefaultPageSize
	}
	if requested > s.cfg.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return requested
}
