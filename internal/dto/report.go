package dto

// ExportRequest queues a background report export.
type ExportRequest struct {
	CourseID string `json:"courseId"`
	Format   string `json:"format" binding:"omitempty,oneof=csv pdf"`
}
