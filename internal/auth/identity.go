// Package auth implements the credential and authorization primitives:
// password hashing, signed session tokens, and the role capability policy.
// Everything here is stateless; persistence lookups happen in the session
// and scope packages.
package auth

import (
	"github.com/google/uuid"

	"errsite/internal/models"
)

// Identity is the authenticated user attached to a request. A nil
// *Identity means "no session" and is treated as least-privileged
// everywhere.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  models.Role
}
