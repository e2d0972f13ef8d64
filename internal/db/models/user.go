// Package models - user.go defines the User model for registry accounts,
// carrying the stored credential alongside profile and role fields.
package models

import "time"

// User represents a registry account. PasswordHash holds the stored credential
// in "salt_hex:sha256_hex" form (or a bare legacy digest for records imported
// from older installations) and must never be serialized to clients.
type User struct {
	UserID       int64      `json:"user_id" db:"user_id"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Email        string     `json:"email" db:"email"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedDate  time.Time  `json:"created_date" db:"created_date"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
}

// Roles assignable to users. RoleAdmin unlocks the user-management endpoints.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
