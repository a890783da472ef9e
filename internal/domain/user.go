package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role controls what a user may do.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// User is identified by email. PasswordHash and Salt are opaque to storage.
type User struct {
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}

// NewUser captures the payload required to register a user.
type NewUser struct {
	Email        string
	PasswordHash string
	Salt         string
	Name         string
	Role         Role
}

// Validate checks the fields storage depends on.
func (u NewUser) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, u.Role)
	}
	return nil
}
