package dto

// CreateUserRequest registers a new account through the gateway.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=64"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=ADMIN LEARNER"`
}

// UpdateUserRequest modifies an existing account. Absent fields are left
// untouched upstream.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,min=3,max=64"`
	FullName *string `json:"fullName"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN LEARNER"`
	Active   *bool   `json:"active"`
}

// CourseRequest creates or replaces a catalog entry.
type CourseRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Provider string `json:"provider"`
}

// ProviderRequest creates or replaces a content provider, including its
// course assignments.
type ProviderRequest struct {
	Name      string   `json:"name" binding:"required"`
	Contact   string   `json:"contact" binding:"omitempty,email"`
	CourseIDs []string `json:"courseIds"`
}

// VerbRequest creates or replaces an xAPI verb configuration.
type VerbRequest struct {
	IRI     string `json:"iri" binding:"required,url"`
	Display string `json:"display" binding:"required"`
	Enabled bool   `json:"enabled"`
}
