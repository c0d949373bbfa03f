package auth

import "errsite/internal/models"

// Role capability policy. Every predicate is total over all roles plus
// the nil identity (no session), which always answers false. None of
// these functions touch persistence; locality scope is a separate check
// in the scope package.

// CanManageUsers reports whether the identity may create users, change
// roles, or deactivate accounts. Super admin only.
func CanManageUsers(id *Identity) bool {
	return id != nil && id.Role == models.RoleSuperAdmin
}

// CanManageLocalities reports whether the identity may create or edit
// localities.
func CanManageLocalities(id *Identity) bool {
	return id != nil && (id.Role == models.RoleSuperAdmin || id.Role == models.RoleStateAdmin)
}

// CanAssignLocalities reports whether the identity may grant or revoke
// locality access for other users.
func CanAssignLocalities(id *Identity) bool {
	return id != nil && (id.Role == models.RoleSuperAdmin || id.Role == models.RoleStateAdmin)
}

// CanSelectAnyLocality reports whether the identity acts with an
// unrestricted locality scope, including global (no-locality) content.
func CanSelectAnyLocality(id *Identity) bool {
	return id != nil && (id.Role == models.RoleSuperAdmin || id.Role == models.RoleStateAdmin)
}

// CanPublish reports whether the identity may publish or unpublish posts.
func CanPublish(id *Identity) bool {
	if id == nil {
		return false
	}
	switch id.Role {
	case models.RoleSuperAdmin, models.RoleStateAdmin, models.RoleLocalityAdmin:
		return true
	}
	return false
}

// CanEditPosts reports whether the identity may author or edit posts at
// all. Scope restrictions still apply to non-admin roles.
func CanEditPosts(id *Identity) bool {
	return CanPublish(id) || (id != nil && id.Role == models.RoleEditor)
}

// CanManageSettings reports whether the identity may edit the site
// settings singleton. Super admin only.
func CanManageSettings(id *Identity) bool {
	return id != nil && id.Role == models.RoleSuperAdmin
}
