package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"errsite/internal/models"
)

// SiteStore handles the settings singleton and donation methods shown on
// the public site.
type SiteStore struct {
	db DBTX
}

// NewSiteStore creates a new SiteStore with the given connection.
func NewSiteStore(db DBTX) *SiteStore {
	return &SiteStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *SiteStore) WithTx(tx *sql.Tx) *SiteStore {
	return &SiteStore{db: tx}
}

// Settings returns the singleton settings row. Returns nil if the row has
// not been seeded yet.
func (s *SiteStore) Settings() (*models.SiteSettings, error) {
	set := &models.SiteSettings{}
	var statsJSON []byte
	err := s.db.QueryRow(`
		SELECT id, site_name_en, site_name_ar, hero_text_en, hero_text_ar, stats, updated_at
		FROM site_settings WHERE id = 'default'
	`).Scan(&set.ID, &set.SiteNameEN, &set.SiteNameAR, &set.HeroTextEN, &set.HeroTextAR, &statsJSON, &set.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load site settings: %w", err)
	}
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &set.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal site stats: %w", err)
		}
	}
	return set, nil
}

// UpdateSettings replaces the singleton settings row's fields.
func (s *SiteStore) UpdateSettings(set *models.SiteSettings) error {
	statsJSON, err := json.Marshal(set.Stats)
	if err != nil {
		return fmt.Errorf("marshal site stats: %w", err)
	}
	res, err := s.db.Exec(`
		UPDATE site_settings SET
			site_name_en = $1, site_name_ar = $2,
			hero_text_en = $3, hero_text_ar = $4,
			stats = $5, updated_at = NOW()
		WHERE id = 'default'
	`, set.SiteNameEN, set.SiteNameAR, set.HeroTextEN, set.HeroTextAR, statsJSON)
	if err != nil {
		return fmt.Errorf("update site settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DonationMethods returns active donation methods in display order.
func (s *SiteStore) DonationMethods() ([]models.DonationMethod, error) {
	rows, err := s.db.Query(`
		SELECT id, method_type, title_en, title_ar, details_en, details_ar, sort_order, is_active, created_at
		FROM donation_methods
		WHERE is_active = TRUE
		ORDER BY sort_order ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list donation methods: %w", err)
	}
	defer rows.Close()

	var methods []models.DonationMethod
	for rows.Next() {
		var m models.DonationMethod
		if err := rows.Scan(&m.ID, &m.Type, &m.TitleEN, &m.TitleAR, &m.DetailsEN, &m.DetailsAR, &m.SortOrder, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donation method: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}
