package models

import (
	"time"

	"github.com/google/uuid"
)

// Locality is a geographic unit of the response network (e.g. Kas,
// Eastern Nyala). Names and descriptions are bilingual.
type Locality struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	NameEN        string    `json:"name_en"`
	NameAR        string    `json:"name_ar"`
	DescriptionEN *string   `json:"description_en,omitempty"`
	DescriptionAR *string   `json:"description_ar,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
