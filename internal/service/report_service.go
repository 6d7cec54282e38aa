package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	"github.com/openlearn-dev/lms-admin-api/internal/paging"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
	"github.com/openlearn-dev/lms-admin-api/pkg/export"
	"github.com/openlearn-dev/lms-admin-api/pkg/jobs"
	"github.com/openlearn-dev/lms-admin-api/pkg/storage"
)

type reportSource interface {
	ReportFetcher(courseID string, title *string) paging.FetchFunc[models.ReportRow]
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportObserver interface {
	RecordExportJob(status models.ExportStatus)
}

// ReportServiceConfig tunes export behaviour.
type ReportServiceConfig struct {
	APIPrefix       string
	WalkPageSize    int
	WalkMaxPages    int
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	Workers         int
	MaxRetries      int
}

// ReportService runs report exports: a background walk over every page of the
// backend's report endpoint, rendered to a file and handed out via signed URL.
// Jobs are held in memory; a restart drops them together with the sessions.
type ReportService struct {
	source  reportSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	metrics exportObserver
	logger  *zap.Logger
	cfg     ReportServiceConfig
	queue   *jobs.Queue
	now     func() time.Time

	mu      sync.Mutex
	jobs    map[string]*models.ExportJob
	running map[string]string
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Source  reportSource
	Storage fileStorage
	Signer  *storage.SignedURLSigner
	Metrics exportObserver
	Logger  *zap.Logger
	Config  ReportServiceConfig
	CSV     csvRenderer
	PDF     pdfRenderer
}

// NewReportService constructs a ReportService with its own worker queue.
func NewReportService(params ReportServiceParams) *ReportService {
	cfg := params.Config
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.WalkPageSize <= 0 {
		cfg.WalkPageSize = 1000
	}
	if cfg.WalkMaxPages <= 0 {
		cfg.WalkMaxPages = 10000
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	// Mirror the queue defaults so the terminal-attempt check in handle
	// agrees with how often the queue actually retries.
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}

	s := &ReportService{
		source:  params.Source,
		storage: params.Storage,
		csv:     csv,
		pdf:     pdf,
		signer:  params.Signer,
		metrics: params.Metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		jobs:    make(map[string]*models.ExportJob),
		running: make(map[string]string),
	}
	s.queue = jobs.NewQueue("exports", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool and the cleanup sweeper.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the worker pool.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Enqueue registers an export job and hands it to the worker pool. Only one
// job per filter combination may run at a time.
func (s *ReportService) Enqueue(_ context.Context, createdBy string, req dto.ExportRequest) (*models.ExportJob, error) {
	format := models.ExportFormat(req.Format)
	if format == "" {
		format = models.ExportFormatCSV
	}
	key := filterKey(req.CourseID, format)

	s.mu.Lock()
	if _, busy := s.running[key]; busy {
		s.mu.Unlock()
		return nil, appErrors.ErrExportRunning
	}
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		CourseID:  req.CourseID,
		Format:    format,
		Status:    models.ExportStatusQueued,
		CreatedBy: createdBy,
		CreatedAt: s.now().UTC(),
	}
	s.jobs[job.ID] = job
	s.running[key] = job.ID
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "report_export", Payload: job.ID}); err != nil {
		s.fail(job.ID, "export queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}

	s.logger.Info("export queued",
		zap.String("job_id", job.ID),
		zap.String("course_id", req.CourseID),
		zap.String("format", string(format)))
	return s.jobCopy(job.ID)
}

// Job returns a snapshot of one export job.
func (s *ReportService) Job(_ context.Context, id string) (*models.ExportJob, error) {
	return s.jobCopy(id)
}

// Jobs lists known export jobs, newest first.
func (s *ReportService) Jobs(_ context.Context) []models.ExportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]models.ExportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		list = append(list, *job)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// Download validates a signed token and opens the referenced file. The
// returned name is what the browser should save the file as.
func (s *ReportService) Download(_ context.Context, token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, path.Base(relPath), nil
}

// handle performs the export walk for one queued job. A transient walk
// failure is returned to the queue so it retries with the same job ID.
func (s *ReportService) handle(ctx context.Context, queued jobs.Job) error {
	jobID, _ := queued.Payload.(string)
	job, err := s.jobCopy(jobID)
	if err != nil {
		return nil
	}

	s.transition(jobID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusProcessing
		j.Progress = 10
	})

	var title string
	fetch := s.source.ReportFetcher(job.CourseID, &title)
	rows, err := paging.WalkAll(ctx, fetch, s.cfg.WalkPageSize, s.cfg.WalkMaxPages)
	if err != nil {
		s.logger.Warn("export walk failed",
			zap.String("job_id", jobID),
			zap.Int("attempt", queued.Attempt),
			zap.Error(err))
		return s.retryOrFail(queued, err)
	}
	if len(rows) == 0 {
		s.fail(jobID, appErrors.ErrEmptyExport.Message)
		return nil
	}

	s.transition(jobID, func(j *models.ExportJob) { j.Progress = 70 })

	dataset := reportDataset(rows)
	var payload []byte
	switch job.Format {
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.fail(jobID, err.Error())
		return nil
	}

	label := title
	if label == "" {
		label = job.CourseID
	}
	filename := export.Filename("report", label, string(job.Format))
	relPath, err := s.storage.Save(path.Join(jobID, filename), payload)
	if err != nil {
		return s.retryOrFail(queued, err)
	}

	token, _, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		s.fail(jobID, err.Error())
		return nil
	}
	resultURL := fmt.Sprintf("%s/export/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)

	finishedAt := s.now().UTC()
	s.transition(jobID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFinished
		j.Progress = 100
		j.RowCount = len(rows)
		j.ResultURL = &resultURL
		j.FinishedAt = &finishedAt
	})
	s.release(jobID)
	if s.metrics != nil {
		s.metrics.RecordExportJob(models.ExportStatusFinished)
	}
	s.logger.Info("export finished",
		zap.String("job_id", jobID),
		zap.Int("rows", len(rows)),
		zap.String("file", relPath))
	return nil
}

// retryOrFail hands a transient failure back to the queue. While retry budget
// remains the job stays in processing and the per-filter guard stays held, so
// a duplicate export for the same filters cannot start mid-retry; the failure
// becomes terminal only on the last attempt.
func (s *ReportService) retryOrFail(queued jobs.Job, err error) error {
	if queued.Attempt >= s.cfg.MaxRetries {
		jobID, _ := queued.Payload.(string)
		s.fail(jobID, err.Error())
	}
	return err
}

func (s *ReportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
			} else if len(deleted) > 0 {
				s.logger.Info("expired export files removed", zap.Int("count", len(deleted)))
			}
			s.pruneJobs()
		}
	}
}

// pruneJobs drops job records whose results have expired.
func (s *ReportService) pruneJobs() {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}

func (s *ReportService) jobCopy(id string) (*models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	snapshot := *job
	return &snapshot, nil
}

func (s *ReportService) transition(id string, mutate func(*models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		mutate(job)
	}
}

func (s *ReportService) fail(id, message string) {
	finishedAt := s.now().UTC()
	s.transition(id, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFailed
		j.ErrorMessage = &message
		j.FinishedAt = &finishedAt
	})
	s.release(id)
	if s.metrics != nil {
		s.metrics.RecordExportJob(models.ExportStatusFailed)
	}
}

// release frees the per-filter guard held by the given job.
func (s *ReportService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, jobID := range s.running {
		if jobID == id {
			delete(s.running, key)
		}
	}
}

func filterKey(courseID string, format models.ExportFormat) string {
	return courseID + "|" + string(format)
}

func reportDataset(rows []models.ReportRow) export.Dataset {
	// Header cells are the literal column keys so a consumer can match them
	// back to the backend's field names.
	columns := []export.Column{
		{Key: "id"},
		{Key: "username"},
		{Key: "courseTitle"},
		{Key: "enrolledAt"},
		{Key: "completedAt"},
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"id":          row.ID,
			"username":    row.Username,
			"courseTitle": row.CourseTitle,
			"enrolledAt":  row.EnrolledAt,
			"completedAt": row.CompletedAt,
		})
	}
	return export.Dataset{Columns: columns, Rows: dataRows}
}
