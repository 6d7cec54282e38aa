package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for the admin surface. The gateway has no database,
// so the interesting latency is the upstream LMS backend.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	upstreamDuration *prometheus.HistogramVec
	exportJobs       *prometheus.CounterVec
	activeSessions   prometheus.Gauge

	cacheHitCount         uint64
	cacheMissCount        uint64
	requestCount          uint64
	requestDurationTotal  uint64
	upstreamCount         uint64
	upstreamDurationTotal uint64
	exportFinishedCount   uint64
	exportFailedCount     uint64
	sessionCount          int64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of requests to the LMS backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Export jobs by terminal status",
	}, []string{"status"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "browse_sessions_active",
		Help: "Currently open learner browse sessions",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHitRatio, cacheHits, cacheMisses, upstreamDuration, exportJobs, activeSessions, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		upstreamDuration: upstreamDuration,
		exportJobs:       exportJobs,
		activeSessions:   activeSessions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveUpstream records one round trip to the LMS backend. Status 0 means
// the request never completed.
func (m *MetricsService) ObserveUpstream(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(endpoint, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.upstreamCount, 1)
	atomic.AddUint64(&m.upstreamDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordExportJob counts an export job reaching a terminal status.
func (m *MetricsService) RecordExportJob(status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(status)).Inc()
	switch status {
	case models.ExportStatusFinished:
		atomic.AddUint64(&m.exportFinishedCount, 1)
	case models.ExportStatusFailed:
		atomic.AddUint64(&m.exportFailedCount, 1)
	}
}

// SessionOpened increments the browse session gauge.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	atomic.AddInt64(&m.sessionCount, 1)
}

// SessionClosed decrements the browse session gauge.
func (m *MetricsService) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	atomic.AddInt64(&m.sessionCount, -1)
}

// Snapshot returns aggregated metrics suitable for the admin status endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	upstream := atomic.LoadUint64(&m.upstreamCount)
	upstreamDuration := atomic.LoadUint64(&m.upstreamDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgUpstreamMs float64
	if upstream > 0 {
		avgUpstreamMs = float64(upstreamDuration) / float64(upstream) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:             cacheRatio,
		CacheHits:                 hits,
		CacheMisses:               misses,
		RequestsTotal:             requests,
		AverageRequestDurationMs:  avgRequestMs,
		UpstreamRequests:          upstream,
		AverageUpstreamDurationMs: avgUpstreamMs,
		ExportJobsFinished:        atomic.LoadUint64(&m.exportFinishedCount),
		ExportJobsFailed:          atomic.LoadUint64(&m.exportFailedCount),
		ActiveBrowseSessions:      atomic.LoadInt64(&m.sessionCount),
		Goroutines:                runtime.NumGoroutine(),
		GeneratedAt:               time.Now().UTC(),
	}
}
