package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"errsite/internal/models"
)

// GrantStore handles the user–locality access relation.
type GrantStore struct {
	db DBTX
}

// NewGrantStore creates a new GrantStore with the given connection.
func NewGrantStore(db DBTX) *GrantStore {
	return &GrantStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *GrantStore) WithTx(tx *sql.Tx) *GrantStore {
	return &GrantStore{db: tx}
}

// LocalityIDsForUser returns the locality ids the user holds grants for.
// Read fresh on every call so a revoked grant takes effect immediately.
func (s *GrantStore) LocalityIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(`
		SELECT locality_id FROM user_locality_access WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants for user: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListForUser returns the full grant rows for a user.
func (s *GrantStore) ListForUser(userID uuid.UUID) ([]models.UserLocalityAccess, error) {
	rows, err := s.db.Query(`
		SELECT user_id, locality_id, created_at
		FROM user_locality_access WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []models.UserLocalityAccess
	for rows.Next() {
		var g models.UserLocalityAccess
		if err := rows.Scan(&g.UserID, &g.LocalityID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// Assign creates a grant. The composite primary key rejects duplicate
// pairs and the foreign keys reject dangling user or locality ids.
func (s *GrantStore) Assign(userID, localityID uuid.UUID) error {
	_, err := s.db.Exec(`
		INSERT INTO user_locality_access (user_id, locality_id)
		VALUES ($1, $2)
	`, userID, localityID)
	if err != nil {
		return fmt.Errorf("assign grant: %w", err)
	}
	return nil
}

// Remove deletes a grant pair. Removing a grant that does not exist
// returns sql.ErrNoRows.
func (s *GrantStore) Remove(userID, localityID uuid.UUID) error {
	res, err := s.db.Exec(`
		DELETE FROM user_locality_access WHERE user_id = $1 AND locality_id = $2
	`, userID, localityID)
	if err != nil {
		return fmt.Errorf("remove grant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
