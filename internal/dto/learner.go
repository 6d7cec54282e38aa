package dto

import (
	"time"

	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

// CreateSessionRequest opens a server-side browse session over the progress
// collection.
type CreateSessionRequest struct {
	CourseID string `json:"courseId"`
	PageSize int    `json:"pageSize" binding:"omitempty,min=1,max=200"`
}

// UpdateSessionRequest changes the filters or page size of an existing
// session. Either change discards the recorded cursor chain and reloads the
// first page.
type UpdateSessionRequest struct {
	CourseID *string `json:"courseId"`
	PageSize *int    `json:"pageSize" binding:"omitempty,min=1,max=200"`
}

// SessionResponse is the visible state of a browse session: the current page
// plus cursor position. Cursors themselves never leave the gateway.
type SessionResponse struct {
	SessionID string                  `json:"sessionId"`
	CourseID  string                  `json:"courseId,omitempty"`
	Items     []models.ProgressRecord `json:"items"`
	ExpiresAt time.Time               `json:"expiresAt"`
}
