package models

import "time"

// SystemMetrics is a lightweight operational snapshot exposed on the admin
// surface, complementing the Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio             float64   `json:"cacheHitRatio"`
	CacheHits                 uint64    `json:"cacheHits"`
	CacheMisses               uint64    `json:"cacheMisses"`
	RequestsTotal             uint64    `json:"requestsTotal"`
	AverageRequestDurationMs  float64   `json:"avgRequestDurationMs"`
	UpstreamRequests          uint64    `json:"upstreamRequests"`
	AverageUpstreamDurationMs float64   `json:"avgUpstreamDurationMs"`
	ExportJobsFinished        uint64    `json:"exportJobsFinished"`
	ExportJobsFailed          uint64    `json:"exportJobsFailed"`
	ActiveBrowseSessions      int64     `json:"activeBrowseSessions"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generatedAt"`
}
