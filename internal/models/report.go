package models

import "time"

// ReportRow is a flattened export unit produced by the backend's reporting
// endpoint. The gateway's only job is to walk all pages and flatten.
type ReportRow struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	CourseTitle string `json:"courseTitle"`
	EnrolledAt  string `json:"enrolledAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures export job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks a background export walk. Jobs live in memory only; the
// gateway intentionally has no database and a restart simply drops them.
type ExportJob struct {
	ID           string       `json:"id"`
	CourseID     string       `json:"courseId,omitempty"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	Progress     int          `json:"progress"`
	RowCount     int          `json:"rowCount"`
	ResultURL    *string      `json:"resultUrl,omitempty"`
	CreatedBy    string       `json:"createdBy"`
	CreatedAt    time.Time    `json:"createdAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
	ErrorMessage *string      `json:"errorMessage,omitempty"`
}
