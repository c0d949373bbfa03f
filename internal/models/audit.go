package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is an immutable record of a privileged mutation.
// Entries are only ever appended, never updated or deleted.
type AuditLogEntry struct {
	ID         uuid.UUID      `json:"id"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
