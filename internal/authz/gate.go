// Package authz is the request authorization gate. Every privileged
// mutation flows through a Gate method that checks, in order: session
// identity, role capability, locality scope against the persisted
// record, then applies the mutation and its audit entry on a single
// transaction. A rejection at any step returns before anything is
// written.
package authz

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/models"
	"errsite/internal/scope"
	"errsite/internal/store"
)

// Gate authorizes and applies privileged mutations.
type Gate struct {
	db         *sql.DB
	users      *store.UserStore
	localities *store.LocalityStore
	posts      *store.PostStore
	audit      *store.AuditStore
	site       *store.SiteStore
	grants     *store.GrantStore
	scope      *scope.Resolver
}

// New creates a Gate over the shared database handle and stores.
func New(db *sql.DB, users *store.UserStore, localities *store.LocalityStore, posts *store.PostStore, grants *store.GrantStore, audit *store.AuditStore, site *store.SiteStore, scopes *scope.Resolver) *Gate {
	return &Gate{
		db:         db,
		users:      users,
		localities: localities,
		posts:      posts,
		grants:     grants,
		audit:      audit,
		site:       site,
		scope:      scopes,
	}
}

// inTx runs fn inside a transaction, rolling back on error. The audit
// entry for a mutation is written by fn on the same transaction, so the
// mutation and its journal are durable together or not at all.
func (g *Gate) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := g.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- Localities ---

// LocalityInput carries the fields for creating or updating a locality.
type LocalityInput struct {
	Slug          string
	NameEN        string
	NameAR        string
	DescriptionEN *string
	DescriptionAR *string
}

func (in *LocalityInput) validate() error {
	in.Slug = strings.TrimSpace(in.Slug)
	in.NameEN = strings.TrimSpace(in.NameEN)
	in.NameAR = strings.TrimSpace(in.NameAR)
	switch {
	case in.Slug == "":
		return fmt.Errorf("%w: slug is required", ErrValidation)
	case in.NameEN == "":
		return fmt.Errorf("%w: name_en is required", ErrValidation)
	case in.NameAR == "":
		return fmt.Errorf("%w: name_ar is required", ErrValidation)
	}
	return nil
}

// CreateLocality creates a locality and journals the action.
func (g *Gate) CreateLocality(identity *auth.Identity, in LocalityInput) (*models.Locality, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if !auth.CanManageLocalities(identity) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *models.Locality
	err := g.inTx(func(tx *sql.Tx) error {
		var err error
		created, err = g.localities.WithTx(tx).Create(&models.Locality{
			Slug:          in.Slug,
			NameEN:        in.NameEN,
			NameAR:        in.NameAR,
			DescriptionEN: in.DescriptionEN,
			DescriptionAR: in.DescriptionAR,
		})
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q already exists", ErrConflict, in.Slug)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "create", "locality", &created.ID, map[string]any{"slug": created.Slug})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateLocality edits a locality and journals the action.
func (g *Gate) UpdateLocality(identity *auth.Identity, id uuid.UUID, in LocalityInput) (*models.Locality, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if !auth.CanManageLocalities(identity) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := g.localities.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: locality %s", ErrNotFound, id)
	}

	updated := &models.Locality{
		ID:            id,
		Slug:          in.Slug,
		NameEN:        in.NameEN,
		NameAR:        in.NameAR,
		DescriptionEN: in.DescriptionEN,
		DescriptionAR: in.DescriptionAR,
	}
	err = g.inTx(func(tx *sql.Tx) error {
		err := g.localities.WithTx(tx).Update(updated)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q already exists", ErrConflict, in.Slug)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "update", "locality", &id, map[string]any{"slug": in.Slug})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// --- Users ---

// UserInput carries the fields for creating a back-office user.
type UserInput struct {
	Email    string
	Password string
	Role     models.Role
}

// CreateUser creates an active user with a hashed password.
func (g *Gate) CreateUser(identity *auth.Identity, in UserInput) (*models.User, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if !auth.CanManageUsers(identity) {
		return nil, ErrForbidden
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = g.inTx(func(tx *sql.Tx) error {
		var err error
		created, err = g.users.WithTx(tx).Create(in.Email, hash, in.Role)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: email %q already exists", ErrConflict, in.Email)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "create", "user", &created.ID, map[string]any{"role": string(in.Role)})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SetUserActive activates or deactivates a user. Deactivation is the
// only removal path; user rows are never deleted.
func (g *Gate) SetUserActive(identity *auth.Identity, userID uuid.UUID, active bool) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !auth.CanManageUsers(identity) {
		return ErrForbidden
	}

	action := "deactivate"
	if active {
		action = "activate"
	}
	return g.inTx(func(tx *sql.Tx) error {
		err := g.users.WithTx(tx).SetActive(userID, active)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, action, "user", &userID, nil)
	})
}

// SetUserRole changes a user's role.
func (g *Gate) SetUserRole(identity *auth.Identity, userID uuid.UUID, role models.Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !auth.CanManageUsers(identity) {
		return ErrForbidden
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	return g.inTx(func(tx *sql.Tx) error {
		err := g.users.WithTx(tx).SetRole(userID, role)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "update", "user", &userID, map[string]any{"role": string(role)})
	})
}

// --- Locality access grants ---

// AssignLocality grants a user access to a locality.
func (g *Gate) AssignLocality(identity *auth.Identity, userID, localityID uuid.UUID) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !auth.CanAssignLocalities(identity) {
		return ErrForbidden
	}

	return g.inTx(func(tx *sql.Tx) error {
		err := g.grants.WithTx(tx).Assign(userID, localityID)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: grant already exists", ErrConflict)
		}
		if store.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or locality does not exist", ErrNotFound)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "assign", "user_locality_access", nil, map[string]any{
			"user_id":     userID.String(),
			"locality_id": localityID.String(),
		})
	})
}

// RemoveLocality revokes a user's access to a locality. The revocation
// applies to the next request; scope reads grants fresh per call.
func (g *Gate) RemoveLocality(identity *auth.Identity, userID, localityID uuid.UUID) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !auth.CanAssignLocalities(identity) {
		return ErrForbidden
	}

	return g.inTx(func(tx *sql.Tx) error {
		err := g.grants.WithTx(tx).Remove(userID, localityID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: grant does not exist", ErrNotFound)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "remove", "user_locality_access", nil, map[string]any{
			"user_id":     userID.String(),
			"locality_id": localityID.String(),
		})
	})
}

// --- Site settings ---

// UpdateSettings replaces the public site settings singleton.
func (g *Gate) UpdateSettings(identity *auth.Identity, set *models.SiteSettings) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !auth.CanManageSettings(identity) {
		return ErrForbidden
	}
	if strings.TrimSpace(set.SiteNameEN) == "" || strings.TrimSpace(set.SiteNameAR) == "" {
		return fmt.Errorf("%w: site name is required in both languages", ErrValidation)
	}

	return g.inTx(func(tx *sql.Tx) error {
		err := g.site.WithTx(tx).UpdateSettings(set)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: site settings not seeded", ErrNotFound)
		}
		if err != nil {
			return err
		}
		return g.audit.WithTx(tx).Record(&identity.ID, "update", "site_settings", nil, nil)
	})
}
