// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level, in descending order of privilege.
type Role string

const (
	// RoleSuperAdmin manages users, localities, and all content.
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleStateAdmin manages localities and all content, but not users.
	RoleStateAdmin Role = "STATE_ADMIN"
	// RoleLocalityAdmin publishes and authors within granted localities.
	RoleLocalityAdmin Role = "LOCALITY_ADMIN"
	// RoleEditor authors drafts within granted localities.
	RoleEditor Role = "EDITOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleStateAdmin, RoleLocalityAdmin, RoleEditor:
		return true
	}
	return false
}

// User represents a back-office user. Users are deactivated rather than
// deleted so audit entries and authored posts keep a valid reference.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserLocalityAccess grants a restricted-scope user the right to act on
// one locality's content. It is a pure relation keyed on both columns.
type UserLocalityAccess struct {
	UserID     uuid.UUID `json:"user_id"`
	LocalityID uuid.UUID `json:"locality_id"`
	CreatedAt  time.Time `json:"created_at"`
}
