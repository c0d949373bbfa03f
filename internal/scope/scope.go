// Package scope computes which localities an identity may act upon.
// Roles with the select-any-locality capability are unrestricted; all
// other roles act only within their persisted grant set, read fresh on
// every call so revocations apply immediately.
package scope

import (
	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/store"
)

// Resolver answers locality-scope questions for an identity.
type Resolver struct {
	grants *store.GrantStore
}

// NewResolver creates a scope resolver backed by the grant store.
func NewResolver(grants *store.GrantStore) *Resolver {
	return &Resolver{grants: grants}
}

// LocalityIDs returns the identity's grant set. unrestricted is true for
// roles that may select any locality; their id slice is nil because the
// set is implicitly "all". A nil identity is restricted with no grants.
func (r *Resolver) LocalityIDs(identity *auth.Identity) (ids []uuid.UUID, unrestricted bool, err error) {
	if identity == nil {
		return nil, false, nil
	}
	if auth.CanSelectAnyLocality(identity) {
		return nil, true, nil
	}
	ids, err = r.grants.LocalityIDsForUser(identity.ID)
	if err != nil {
		return nil, false, err
	}
	return ids, false, nil
}

// HasAccess reports whether the identity may act on the given locality.
// Unrestricted roles may act anywhere, including on global (nil locality)
// content. Restricted roles need a non-nil locality inside their grant
// set; global content is an unrestricted-only concept.
func (r *Resolver) HasAccess(identity *auth.Identity, localityID *uuid.UUID) (bool, error) {
	ids, unrestricted, err := r.LocalityIDs(identity)
	if err != nil {
		return false, err
	}
	if unrestricted {
		return true, nil
	}
	if localityID == nil {
		return false, nil
	}
	for _, id := range ids {
		if id == *localityID {
			return true, nil
		}
	}
	return false, nil
}
