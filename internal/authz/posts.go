package authz

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/models"
	"errsite/internal/store"
)

// PostInput carries the fields for creating or updating a post.
type PostInput struct {
	Type       models.PostType
	Slug       string
	TitleEN    string
	TitleAR    string
	ExcerptEN  string
	ExcerptAR  string
	BodyEN     string
	BodyAR     string
	LocalityID *uuid.UUID
	// Publish requests the post be created in (or remain in) PUBLISHED
	// status. Requires the publish capability; it is never downgraded
	// silently.
	Publish bool
}

func (in *PostInput) validate() error {
	in.Slug = strings.TrimSpace(in.Slug)
	in.TitleEN = strings.TrimSpace(in.TitleEN)
	in.TitleAR = strings.TrimSpace(in.TitleAR)
	switch {
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown post type %q", ErrValidation, in.Type)
	case in.Slug == "":
		return fmt.Errorf("%w: slug is required", ErrValidation)
	case in.TitleEN == "":
		return fmt.Errorf("%w: title_en is required", ErrValidation)
	case in.TitleAR == "":
		return fmt.Errorf("%w: title_ar is required", ErrValidation)
	case strings.TrimSpace(in.BodyEN) == "":
		return fmt.Errorf("%w: body_en is required", ErrValidation)
	case strings.TrimSpace(in.BodyAR) == "":
		return fmt.Errorf("%w: body_ar is required", ErrValidation)
	}
	return nil
}

// postEntityType maps a post type to its audit entity type.
func postEntityType(t models.PostType) string {
	if t == models.PostTypeFieldUpdate {
		return "field_update"
	}
	return "news"
}

// CreatePost creates a post after the full check sequence: capability,
// locality scope on the requested locality, publish capability if a
// published create is requested, then slug uniqueness at insert time.
func (g *Gate) CreatePost(identity *auth.Identity, in PostInput) (*models.Post, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if !auth.CanEditPosts(identity) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	// Restricted roles must name a granted locality; a nil locality is
	// global content, reserved for unrestricted roles.
	ok, err := g.scope.HasAccess(identity, in.LocalityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: locality outside your scope", ErrForbidden)
	}

	// Editors can draft but never self-publish.
	if in.Publish && !auth.CanPublish(identity) {
		return nil, fmt.Errorf("%w: publish capability required", ErrForbidden)
	}

	post := &models.Post{
		Type:       in.Type,
		Slug:       in.Slug,
		TitleEN:    in.TitleEN,
		TitleAR:    in.TitleAR,
		ExcerptEN:  in.ExcerptEN,
		ExcerptAR:  in.ExcerptAR,
		BodyEN:     in.BodyEN,
		BodyAR:     in.BodyAR,
		Status:     models.PostStatusDraft,
		LocalityID: in.LocalityID,
		AuthorID:   identity.ID,
	}
	action := "create"
	if in.Publish {
		action = "publish"
	}

	var created *models.Post
	err = g.inTx(func(tx *sql.Tx) error {
		txPosts := g.posts.WithTx(tx)
		var err error
		// Always insert as a draft; the publish transition below stamps
		// published_at so the status/published_at invariant holds.
		created, err = txPosts.Create(post)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q already exists", ErrConflict, in.Slug)
		}
		if err != nil {
			return err
		}
		if in.Publish {
			if err := txPosts.SetStatus(created.ID, models.PostStatusPublished); err != nil {
				return err
			}
			created, err = txPosts.FindByID(created.ID)
			if err != nil {
				return err
			}
		}
		return g.audit.WithTx(tx).Record(&identity.ID, action, postEntityType(in.Type), &created.ID, map[string]any{
			"slug":   created.Slug,
			"status": string(created.Status),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePost edits a post's content. Scope is checked against the
// persisted record's locality first, then against the requested locality
// when the update moves the post. A restricted user can neither reach
// out of their grants nor move a post into or out of them.
func (g *Gate) UpdatePost(identity *auth.Identity, id uuid.UUID, in PostInput) (*models.Post, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if !auth.CanEditPosts(identity) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := g.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}

	ok, err := g.scope.HasAccess(identity, existing.LocalityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: post outside your scope", ErrForbidden)
	}
	if !sameLocality(existing.LocalityID, in.LocalityID) {
		ok, err = g.scope.HasAccess(identity, in.LocalityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: target locality outside your scope", ErrForbidden)
		}
	}

	updated := &models.Post{
		ID:         id,
		Slug:       in.Slug,
		TitleEN:    in.TitleEN,
		TitleAR:    in.TitleAR,
		ExcerptEN:  in.ExcerptEN,
		ExcerptAR:  in.ExcerptAR,
		BodyEN:     in.BodyEN,
		BodyAR:     in.BodyAR,
		LocalityID: in.LocalityID,
	}
	err = g.inTx(func(tx *sql.Tx) error {
		err := g.posts.WithTx(tx).Update(updated)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q already exists", ErrConflict, in.Slug)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "update", postEntityType(existing.Type), &id, map[string]any{"slug": in.Slug})
	})
	if err != nil {
		return nil, err
	}
	return g.posts.FindByID(id)
}

// PublishPost transitions a post to PUBLISHED, stamping published_at.
func (g *Gate) PublishPost(identity *auth.Identity, id uuid.UUID) (*models.Post, error) {
	return g.setPostStatus(identity, id, models.PostStatusPublished, "publish")
}

// UnpublishPost transitions a post back to DRAFT, clearing published_at.
func (g *Gate) UnpublishPost(identity *auth.Identity, id uuid.UUID) (*models.Post, error) {
	return g.setPostStatus(identity, id, models.PostStatusDraft, "unpublish")
}

func (g *Gate) setPostStatus(identity *auth.Identity, id uuid.UUID, status models.PostStatus, action string) (*models.Post, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	// Publish capability gates both directions of the transition.
	if !auth.CanPublish(identity) {
		return nil, ErrForbidden
	}

	existing, err := g.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}

	ok, err := g.scope.HasAccess(identity, existing.LocalityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: post outside your scope", ErrForbidden)
	}

	err = g.inTx(func(tx *sql.Tx) error {
		if err := g.posts.WithTx(tx).SetStatus(id, status); err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, action, postEntityType(existing.Type), &id, map[string]any{"slug": existing.Slug})
	})
	if err != nil {
		return nil, err
	}
	return g.posts.FindByID(id)
}

func sameLocality(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
