package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteSettings is the singleton row holding the public site's bilingual
// identity and headline statistics.
type SiteSettings struct {
	ID         string         `json:"id"` // always "default"
	SiteNameEN string         `json:"site_name_en"`
	SiteNameAR string         `json:"site_name_ar"`
	HeroTextEN string         `json:"hero_text_en"`
	HeroTextAR string         `json:"hero_text_ar"`
	Stats      map[string]int `json:"stats"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// DonationMethodType distinguishes bank transfer details from mobile
// money wallets on the donate page.
type DonationMethodType string

const (
	DonationMethodBank        DonationMethodType = "BANK"
	DonationMethodMobileMoney DonationMethodType = "MOBILE_MONEY"
)

// DonationMethod is one way supporters can send funds, displayed on the
// public donate page in sort order.
type DonationMethod struct {
	ID        uuid.UUID          `json:"id"`
	Type      DonationMethodType `json:"method_type"`
	TitleEN   string             `json:"title_en"`
	TitleAR   string             `json:"title_ar"`
	DetailsEN string             `json:"details_en"`
	DetailsAR string             `json:"details_ar"`
	SortOrder int                `json:"sort_order"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
}
