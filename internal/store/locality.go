package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"errsite/internal/models"
)

// LocalityStore handles all locality-related database operations.
type LocalityStore struct {
	db DBTX
}

// NewLocalityStore creates a new LocalityStore with the given connection.
func NewLocalityStore(db DBTX) *LocalityStore {
	return &LocalityStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *LocalityStore) WithTx(tx *sql.Tx) *LocalityStore {
	return &LocalityStore{db: tx}
}

const localityColumns = "id, slug, name_en, name_ar, description_en, description_ar, created_at, updated_at"

func scanLocality(row *sql.Row) (*models.Locality, error) {
	l := &models.Locality{}
	err := row.Scan(&l.ID, &l.Slug, &l.NameEN, &l.NameAR, &l.DescriptionEN, &l.DescriptionAR, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List returns all localities ordered by English name.
func (s *LocalityStore) List() ([]models.Locality, error) {
	rows, err := s.db.Query(`
		SELECT ` + localityColumns + ` FROM localities ORDER BY name_en ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list localities: %w", err)
	}
	defer rows.Close()

	var items []models.Locality
	for rows.Next() {
		var l models.Locality
		if err := rows.Scan(&l.ID, &l.Slug, &l.NameEN, &l.NameAR, &l.DescriptionEN, &l.DescriptionAR, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan locality: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// FindByID retrieves a locality by UUID. Returns nil if not found.
func (s *LocalityStore) FindByID(id uuid.UUID) (*models.Locality, error) {
	l, err := scanLocality(s.db.QueryRow(`
		SELECT `+localityColumns+` FROM localities WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("find locality by id: %w", err)
	}
	return l, nil
}

// FindBySlug retrieves a locality by slug. Returns nil if not found.
func (s *LocalityStore) FindBySlug(slug string) (*models.Locality, error) {
	l, err := scanLocality(s.db.QueryRow(`
		SELECT `+localityColumns+` FROM localities WHERE slug = $1
	`, slug))
	if err != nil {
		return nil, fmt.Errorf("find locality by slug: %w", err)
	}
	return l, nil
}

// Create inserts a new locality. The unique index on slug rejects
// duplicates; callers translate that into a conflict.
func (s *LocalityStore) Create(l *models.Locality) (*models.Locality, error) {
	created, err := scanLocality(s.db.QueryRow(`
		INSERT INTO localities (slug, name_en, name_ar, description_en, description_ar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+localityColumns+`
	`, l.Slug, l.NameEN, l.NameAR, l.DescriptionEN, l.DescriptionAR))
	if err != nil {
		return nil, fmt.Errorf("create locality: %w", err)
	}
	return created, nil
}

// Update modifies an existing locality.
func (s *LocalityStore) Update(l *models.Locality) error {
	res, err := s.db.Exec(`
		UPDATE localities SET
			slug = $1, name_en = $2, name_ar = $3,
			description_en = $4, description_ar = $5, updated_at = NOW()
		WHERE id = $6
	`, l.Slug, l.NameEN, l.NameAR, l.DescriptionEN, l.DescriptionAR, l.ID)
	if err != nil {
		return fmt.Errorf("update locality: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of localities.
func (s *LocalityStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM localities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count localities: %w", err)
	}
	return count, nil
}
