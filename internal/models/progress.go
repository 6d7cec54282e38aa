package models

// EnrollmentStatus mirrors the raw enrollment state reported by the backend.
type EnrollmentStatus string

const (
	EnrollmentEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentDropped    EnrollmentStatus = "dropped"
)

// CompletionStatus mirrors the raw completion state reported by the backend.
// The backend does not guarantee this is set consistently with CompletedAt.
type CompletionStatus string

const (
	CompletionCompleted  CompletionStatus = "completed"
	CompletionPassed     CompletionStatus = "passed"
	CompletionInProgress CompletionStatus = "in_progress"
	CompletionFailed     CompletionStatus = "failed"
)

// ProgressRecord is one learner's relationship to one course. Rows are
// read-only here; the backend owns their lifecycle. Duplicate
// (userId, courseId) pairs can occur on re-enrollment and are tolerated.
type ProgressRecord struct {
	UserID           string           `json:"userId"`
	Username         string           `json:"username,omitempty"`
	CourseID         string           `json:"courseId"`
	CourseTitle      string           `json:"courseTitle,omitempty"`
	EnrollmentStatus EnrollmentStatus `json:"enrollmentStatus"`
	CompletionStatus CompletionStatus `json:"completionStatus,omitempty"`
	ProgressPercent  *float64         `json:"progressPercent,omitempty"`
	Score            *float64         `json:"score,omitempty"`
	TimeSpentSeconds *int64           `json:"timeSpent,omitempty"`
	EnrolledAt       string           `json:"enrolledAt,omitempty"`
	StartedAt        string           `json:"startedAt,omitempty"`
	CompletedAt      string           `json:"completedAt,omitempty"`
}

// Completed reports effective completion: either the status says so or a
// completion timestamp exists. Both signals must be checked because the
// backend sets them independently.
func (r ProgressRecord) Completed() bool {
	if r.CompletionStatus == CompletionCompleted || r.CompletionStatus == CompletionPassed {
		return true
	}
	return r.CompletedAt != ""
}

// ActiveEnrollment reports whether the record counts toward enrollments.
func (r ProgressRecord) ActiveEnrollment() bool {
	return r.EnrollmentStatus == EnrollmentEnrolled || r.EnrollmentStatus == EnrollmentInProgress
}

// EffectiveProgress resolves the displayed progress percentage: 100 when
// complete, else progressPercent, else score as a fallback, else 0.
// Values are clamped to the 0-100 range.
func (r ProgressRecord) EffectiveProgress() float64 {
	if r.Completed() {
		return 100
	}
	if r.ProgressPercent != nil {
		return clampPercent(*r.ProgressPercent)
	}
	if r.Score != nil {
		return clampPercent(*r.Score)
	}
	return 0
}

// TimeSpent returns the recorded seconds, substituting 0 when absent.
func (r ProgressRecord) TimeSpent() int64 {
	if r.TimeSpentSeconds == nil {
		return 0
	}
	return *r.TimeSpentSeconds
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
