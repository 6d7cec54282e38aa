package models

// Course is a catalog entry. The gateway uses it as a join key and label
// source for progress aggregation and as a filter dimension.
type Course struct {
	CourseID        string `json:"courseId"`
	Title           string `json:"title"`
	Provider        string `json:"provider,omitempty"`
	EnrollmentCount int    `json:"enrollmentCount"`
	AttemptCount    int    `json:"attemptCount"`
}
