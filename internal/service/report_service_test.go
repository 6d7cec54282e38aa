package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	"github.com/openlearn-dev/lms-admin-api/internal/paging"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
	"github.com/openlearn-dev/lms-admin-api/pkg/storage"
)

// fakeReportSource serves a fixed number of report pages per walk.
type fakeReportSource struct {
	pages     int
	title     string
	failAt    string
	failFirst int
	empty     bool
	block     chan struct{}
	blockMu   sync.Mutex

	callMu sync.Mutex
	calls  int
}

func (f *fakeReportSource) callCount() int {
	f.callMu.Lock()
	defer f.callMu.Unlock()
	return f.calls
}

func (f *fakeReportSource) ReportFetcher(courseID string, title *string) paging.FetchFunc[models.ReportRow] {
	return func(_ context.Context, token string, _ int) (paging.Page[models.ReportRow], error) {
		f.blockMu.Lock()
		block := f.block
		f.blockMu.Unlock()
		if block != nil {
			<-block
		}
		f.callMu.Lock()
		f.calls++
		call := f.calls
		f.callMu.Unlock()
		if call <= f.failFirst {
			return paging.Page[models.ReportRow]{}, fmt.Errorf("backend down")
		}
		if f.failAt != "" && token == f.failAt {
			return paging.Page[models.ReportRow]{}, fmt.Errorf("backend down")
		}
		if title != nil {
			*title = f.title
		}
		if f.empty {
			return paging.Page[models.ReportRow]{}, nil
		}
		idx := 0
		if token != "" {
			fmt.Sscanf(token, "p%d", &idx)
		}
		page := paging.Page[models.ReportRow]{Items: []models.ReportRow{
			{ID: fmt.Sprintf("%d", idx+1), Username: fmt.Sprintf("user%d", idx+1), CourseTitle: f.title},
		}}
		if idx < f.pages-1 {
			page.NextToken = fmt.Sprintf("p%d", idx+1)
		}
		return page, nil
	}
}

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	dir   string
}

func newMemStorage(t *testing.T) *memStorage {
	t.Helper()
	return &memStorage{files: map[string][]byte{}, dir: t.TempDir()}
}

func (m *memStorage) Save(filename string, data []byte) (string, error) {
	m.mu.Lock()
	m.files[filename] = data
	m.mu.Unlock()
	path := filepath.Join(m.dir, filepath.FromSlash(filename))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

func (m *memStorage) Open(filename string) (*os.File, error) {
	return os.Open(filepath.Join(m.dir, filepath.FromSlash(filename)))
}

func (m *memStorage) Delete(filename string) error {
	m.mu.Lock()
	delete(m.files, filename)
	m.mu.Unlock()
	return os.Remove(filepath.Join(m.dir, filepath.FromSlash(filename)))
}

func (m *memStorage) CleanupOlderThan(time.Duration) ([]string, error) { return nil, nil }

func newReportService(t *testing.T, source reportSource) (*ReportService, *memStorage) {
	t.Helper()
	store := newMemStorage(t)
	svc := NewReportService(ReportServiceParams{
		Source:  source,
		Storage: store,
		Signer:  storage.NewSignedURLSigner("test-secret", time.Hour),
		Logger:  zap.NewNop(),
		Config: ReportServiceConfig{
			APIPrefix:    "/api/v1",
			WalkPageSize: 100,
			Workers:      1,
			MaxRetries:   1,
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.Start(ctx)
	t.Cleanup(svc.Stop)
	return svc, store
}

func waitForTerminal(t *testing.T, svc *ReportService, jobID string) models.ExportJob {
	t.Helper()
	var job *models.ExportJob
	require.Eventually(t, func() bool {
		current, err := svc.Job(context.Background(), jobID)
		if err != nil {
			return false
		}
		job = current
		return current.Status == models.ExportStatusFinished || current.Status == models.ExportStatusFailed
	}, 3*time.Second, 10*time.Millisecond)
	return *job
}

func TestReportServiceExportWalksAllPages(t *testing.T) {
	source := &fakeReportSource{pages: 3, title: `Intro "Basics"`}
	svc, store := newReportService(t, source)

	queued, err := svc.Enqueue(context.Background(), "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, queued.Status)

	job := waitForTerminal(t, svc, queued.ID)
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, 3, job.RowCount)
	require.NotNil(t, job.ResultURL)
	assert.Contains(t, *job.ResultURL, "/api/v1/export/")

	store.mu.Lock()
	var saved string
	var content []byte
	for name, data := range store.files {
		saved, content = name, data
	}
	store.mu.Unlock()
	assert.Contains(t, saved, "report-intro-basics.csv")
	lines := strings.Split(strings.TrimRight(string(content), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,username,courseTitle,enrolledAt,completedAt", lines[0])
	assert.Contains(t, lines[1], `"Intro ""Basics"""`)
}

func TestReportServiceEmptyCollectionFails(t *testing.T) {
	source := &fakeReportSource{empty: true}
	svc, _ := newReportService(t, source)

	queued, err := svc.Enqueue(context.Background(), "admin-1", dto.ExportRequest{})
	require.NoError(t, err)

	job := waitForTerminal(t, svc, queued.ID)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, appErrors.ErrEmptyExport.Message, *job.ErrorMessage)
}

func TestReportServiceWalkFailureAborts(t *testing.T) {
	source := &fakeReportSource{pages: 3, title: "Intro", failAt: "p1"}
	svc, store := newReportService(t, source)

	queued, err := svc.Enqueue(context.Background(), "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)

	job := waitForTerminal(t, svc, queued.ID)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.Nil(t, job.ResultURL)

	// No partial file was written.
	store.mu.Lock()
	assert.Empty(t, store.files)
	store.mu.Unlock()
}

type fakeExportObserver struct {
	mu   sync.Mutex
	seen map[models.ExportStatus]int
}

func (f *fakeExportObserver) RecordExportJob(status models.ExportStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[models.ExportStatus]int{}
	}
	f.seen[status]++
}

func (f *fakeExportObserver) counts() map[models.ExportStatus]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[models.ExportStatus]int, len(f.seen))
	for status, n := range f.seen {
		out[status] = n
	}
	return out
}

func TestReportServiceRetryKeepsFilterGuard(t *testing.T) {
	source := &fakeReportSource{pages: 1, title: "Intro", failFirst: 1}
	observer := &fakeExportObserver{}
	svc := NewReportService(ReportServiceParams{
		Source:  source,
		Storage: newMemStorage(t),
		Signer:  storage.NewSignedURLSigner("test-secret", time.Hour),
		Metrics: observer,
		Logger:  zap.NewNop(),
		Config: ReportServiceConfig{
			APIPrefix:    "/api/v1",
			WalkPageSize: 100,
			Workers:      1,
			MaxRetries:   2,
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.Start(ctx)
	t.Cleanup(svc.Stop)

	queued, err := svc.Enqueue(context.Background(), "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)

	// Let the first attempt fail; its retry is now pending.
	require.Eventually(t, func() bool {
		return source.callCount() >= 1
	}, time.Second, 5*time.Millisecond)

	// The job must not report failed while retry budget remains.
	current, err := svc.Job(context.Background(), queued.ID)
	require.NoError(t, err)
	assert.NotEqual(t, models.ExportStatusFailed, current.Status)

	// The filter guard stays held, so a duplicate export is still rejected.
	_, err = svc.Enqueue(context.Background(), "admin-2", dto.ExportRequest{CourseID: "c1"})
	assert.ErrorIs(t, err, appErrors.ErrExportRunning)

	job := waitForTerminal(t, svc, queued.ID)
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, map[models.ExportStatus]int{models.ExportStatusFinished: 1}, observer.counts())
}

func TestReportServiceExhaustedRetriesFailOnce(t *testing.T) {
	source := &fakeReportSource{pages: 3, title: "Intro", failAt: "p1"}
	observer := &fakeExportObserver{}
	svc := NewReportService(ReportServiceParams{
		Source:  source,
		Storage: newMemStorage(t),
		Signer:  storage.NewSignedURLSigner("test-secret", time.Hour),
		Metrics: observer,
		Logger:  zap.NewNop(),
		Config: ReportServiceConfig{
			APIPrefix:    "/api/v1",
			WalkPageSize: 100,
			Workers:      1,
			MaxRetries:   1,
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.Start(ctx)
	t.Cleanup(svc.Stop)

	queued, err := svc.Enqueue(context.Background(), "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)

	job := waitForTerminal(t, svc, queued.ID)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.Equal(t, map[models.ExportStatus]int{models.ExportStatusFailed: 1}, observer.counts())

	// Terminal failure releases the guard for a fresh attempt.
	_, err = svc.Enqueue(context.Background(), "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)
}

func TestReportServiceDuplicateFilterRejected(t *testing.T) {
	source := &fakeReportSource{pages: 1, title: "Intro", block: make(chan struct{})}
	svc, _ := newReportService(t, source)
	ctx := context.Background()

	first, err := svc.Enqueue(ctx, "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)

	_, err = svc.Enqueue(ctx, "admin-2", dto.ExportRequest{CourseID: "c1"})
	assert.ErrorIs(t, err, appErrors.ErrExportRunning)

	// A different filter combination is allowed to run in parallel.
	_, err = svc.Enqueue(ctx, "admin-2", dto.ExportRequest{CourseID: "c2"})
	require.NoError(t, err)

	source.blockMu.Lock()
	close(source.block)
	source.block = nil
	source.blockMu.Unlock()

	job := waitForTerminal(t, svc, first.ID)
	assert.Equal(t, models.ExportStatusFinished, job.Status)

	// Once finished, the same filters may be exported again.
	_, err = svc.Enqueue(ctx, "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)
}

func TestReportServiceDownloadRoundTrip(t *testing.T) {
	source := &fakeReportSource{pages: 1, title: "Intro"}
	svc, _ := newReportService(t, source)
	ctx := context.Background()

	queued, err := svc.Enqueue(ctx, "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)
	job := waitForTerminal(t, svc, queued.ID)
	require.NotNil(t, job.ResultURL)

	token := (*job.ResultURL)[strings.LastIndex(*job.ResultURL, "/")+1:]
	file, name, err := svc.Download(ctx, token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "report-intro.csv", name)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "user1")
}

func TestReportServiceDownloadRejectsTamperedToken(t *testing.T) {
	source := &fakeReportSource{pages: 1, title: "Intro"}
	svc, _ := newReportService(t, source)
	ctx := context.Background()

	queued, err := svc.Enqueue(ctx, "admin-1", dto.ExportRequest{CourseID: "c1"})
	require.NoError(t, err)
	job := waitForTerminal(t, svc, queued.ID)
	require.NotNil(t, job.ResultURL)

	token := (*job.ResultURL)[strings.LastIndex(*job.ResultURL, "/")+1:]
	parts := strings.Split(token, ".")
	parts[0] = "other-job"
	_, _, err = svc.Download(ctx, strings.Join(parts, "."))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
