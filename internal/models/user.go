package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates roles recognised by the admin console.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleLearner UserRole = "LEARNER"
)

// User is an account managed through the admin console. The upstream backend
// owns credentials; the gateway only shuttles profile and role data.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
	Active   bool     `json:"active"`
}

// JWTClaims are the backend-issued token claims the gateway trusts. The core
// only consumes the admin flag.
type JWTClaims struct {
	UserID string `json:"sub"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// PageMeta describes the cursor position of a browse session page.
type PageMeta struct {
	PageIndex int  `json:"page_index"`
	PageSize  int  `json:"page_size"`
	HasNext   bool `json:"has_next"`
	HasPrev   bool `json:"has_prev"`
}
