package domain

import (
	"errors"
	"time"
)

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// AdminLogin is the administrative account excluded from self-service
// password recovery.
const AdminLogin = "admin"

const (
	MaxLoginLength       = 50
	MaxDisplayNameLength = 200

	// MaxUserID caps generated ids to what a 32-bit signed integer column
	// can hold.
	MaxUserID = 1<<31 - 1
)

var (
	ErrLoginTaken         = errors.New("login already in use")
	ErrUserIDConflict     = errors.New("user id already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthConfiguration  = errors.New("user record has no password hash")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("access forbidden")
)

// User models an account in the system. Role is stored on the record and set
// at sign-up; it is changed only through the manager-only role endpoint.
type User struct {
	ID           int64     `json:"user_id"`
	Login        string    `json:"login"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user with the password hash removed.
// Everything handed to callers outside the credential services goes through
// this.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// IsManager reports whether the user holds the elevated role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// ValidRole reports whether role is one of the storable role values.
func ValidRole(role string) bool {
	return role == RoleManager || role == RoleEmployee
}
