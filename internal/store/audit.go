package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"errsite/internal/models"
)

// AuditStore appends and lists audit log entries. The table is
// append-only: there are deliberately no update or delete methods.
type AuditStore struct {
	db DBTX
}

// NewAuditStore creates a new AuditStore with the given connection.
func NewAuditStore(db DBTX) *AuditStore {
	return &AuditStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
// Privileged mutations record their audit entry on the same transaction
// so the mutation and its journal commit or roll back as a unit.
func (s *AuditStore) WithTx(tx *sql.Tx) *AuditStore {
	return &AuditStore{db: tx}
}

// Record appends one audit entry for a privileged mutation.
func (s *AuditStore) Record(userID *uuid.UUID, action, entityType string, entityID *uuid.UUID, meta map[string]any) error {
	var metaJSON []byte
	if meta != nil {
		var err error
		metaJSON, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal audit meta: %w", err)
		}
	}
	_, err := s.db.Exec(`
		INSERT INTO audit_log (user_id, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, action, entityType, entityID, metaJSON)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *AuditStore) List(limit int) ([]models.AuditLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, action, entity_type, entity_id, meta, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &metaJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal audit meta: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
