package models

import (
	"time"

	"github.com/google/uuid"
)

// PostType distinguishes news articles from field updates in the unified
// posts table.
type PostType string

const (
	PostTypeNews        PostType = "NEWS"
	PostTypeFieldUpdate PostType = "FIELD_UPDATE"
)

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	return t == PostTypeNews || t == PostTypeFieldUpdate
}

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
)

// Post is a bilingual news article or field update. A nil LocalityID
// marks global content, which only unrestricted roles may touch.
// Invariant: Status == PUBLISHED iff PublishedAt is non-nil.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Type        PostType   `json:"type"`
	Slug        string     `json:"slug"`
	TitleEN     string     `json:"title_en"`
	TitleAR     string     `json:"title_ar"`
	ExcerptEN   string     `json:"excerpt_en"`
	ExcerptAR   string     `json:"excerpt_ar"`
	BodyEN      string     `json:"body_en"`
	BodyAR      string     `json:"body_ar"`
	Status      PostStatus `json:"status"`
	LocalityID  *uuid.UUID `json:"locality_id,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
