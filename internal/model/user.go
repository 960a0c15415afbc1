package model

import "time"

// Account roles. Admins manage other accounts.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account that may parse forms and keep a history.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// IsAdmin reports whether u may manage other accounts.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UpdateRoleRequest is the payload for changing an account's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}
