package dto

import "github.com/openlearn-dev/lms-admin-api/internal/aggregate"

// DashboardQuery carries the optional dashboard filters.
type DashboardQuery struct {
	CourseID string `form:"courseId"`
}

// DashboardResponse wraps the aggregated summary with the window it covers.
type DashboardResponse struct {
	CourseID       string `json:"courseId,omitempty"`
	SampledRecords int    `json:"sampledRecords"`
	aggregate.Stats
}
