package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// defaultLocalities are the South Darfur localities the network operates
// in. Seeded once; admins extend the list from the back office.
var defaultLocalities = []struct {
	Slug   string
	NameEN string
	NameAR string
}{
	{"eastern-nyala", "Eastern Nyala", "نيالا شرق"},
	{"southern-nyala", "Southern Nyala", "نيالا جنوب"},
	{"kabum", "Kabum", "كبم"},
	{"ed-el-fursan", "Ed El Fursan", "عد الفرسان"},
	{"kas", "Kas", "كاس"},
	{"belail", "Belail", "بليل"},
	{"buram", "Buram", "برام"},
	{"tulus", "Tulus", "تلس"},
}

// Seed populates the database with initial development data: a super
// admin account, the default localities, the site settings singleton,
// and the two donation methods. It is a no-op if users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	adminEmail := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	adminPassword := envOr("SEED_ADMIN_PASSWORD", "ChangeMe123!")

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, role, is_active)
		VALUES ($1, $2, 'SUPER_ADMIN', TRUE)
	`, adminEmail, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for _, loc := range defaultLocalities {
		_, err := db.Exec(`
			INSERT INTO localities (slug, name_en, name_ar)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO NOTHING
		`, loc.Slug, loc.NameEN, loc.NameAR)
		if err != nil {
			return fmt.Errorf("seed locality %s: %w", loc.Slug, err)
		}
	}

	_, err = db.Exec(`
		INSERT INTO site_settings (id, site_name_en, site_name_ar, hero_text_en, hero_text_ar, stats)
		VALUES (
			'default',
			'South Darfur Emergency Response Rooms',
			'غرف الطوارئ – ولاية جنوب دارفور',
			'Community-led humanitarian response to reduce suffering, protect dignity, and save lives.',
			'استجابة إنسانية مجتمعية لخفض المعاناة وحماية الكرامة وإنقاذ الأرواح.',
			'{"beneficiaries": 0, "interventions": 0, "localities_covered": 0, "volunteers": 0}'
		)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed site settings: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO donation_methods (method_type, title_en, title_ar, details_en, details_ar, sort_order)
		VALUES
			('BANK', 'Bank of Khartoum', 'بنك الخرطوم',
			 E'Account Name: (Add later)\nAccount Number: (Add later)\nBranch: (Add later)',
			 E'اسم الحساب: (يضاف لاحقاً)\nرقم الحساب: (يضاف لاحقاً)\nالفرع: (يضاف لاحقاً)', 1),
			('MOBILE_MONEY', 'MyCashi Mobile Money', 'ماي كاشي',
			 E'Wallet Name: (Add later)\nWallet Number: (Add later)',
			 E'اسم المحفظة: (يضاف لاحقاً)\nرقم المحفظة: (يضاف لاحقاً)', 2)
	`)
	if err != nil {
		return fmt.Errorf("seed donation methods: %w", err)
	}

	slog.Info("database seeded", "admin_email", adminEmail, "localities", len(defaultLocalities))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
