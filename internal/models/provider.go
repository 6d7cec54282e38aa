package models

// Provider is a content provider that courses are assigned to.
type Provider struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Contact   string   `json:"contact,omitempty"`
	CourseIDs []string `json:"courseIds,omitempty"`
}
