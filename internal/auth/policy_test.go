package auth

import (
	"testing"

	"github.com/google/uuid"

	"errsite/internal/models"
)

func identityWithRole(role models.Role) *Identity {
	return &Identity{ID: uuid.New(), Email: "test@example.com", Role: role}
}

func TestPolicyMatrix(t *testing.T) {
	super := identityWithRole(models.RoleSuperAdmin)
	state := identityWithRole(models.RoleStateAdmin)
	locality := identityWithRole(models.RoleLocalityAdmin)
	editor := identityWithRole(models.RoleEditor)

	tests := []struct {
		name string
		can  func(*Identity) bool
		// expected results in order: super, state, locality, editor
		want [4]bool
	}{
		{"CanManageUsers", CanManageUsers, [4]bool{true, false, false, false}},
		{"CanManageLocalities", CanManageLocalities, [4]bool{true, true, false, false}},
		{"CanAssignLocalities", CanAssignLocalities, [4]bool{true, true, false, false}},
		{"CanSelectAnyLocality", CanSelectAnyLocality, [4]bool{true, true, false, false}},
		{"CanPublish", CanPublish, [4]bool{true, true, true, false}},
		{"CanEditPosts", CanEditPosts, [4]bool{true, true, true, true}},
		{"CanManageSettings", CanManageSettings, [4]bool{true, false, false, false}},
	}

	identities := []*Identity{super, state, locality, editor}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, id := range identities {
				if got := tt.can(id); got != tt.want[i] {
					t.Errorf("%s(%s) = %v, want %v", tt.name, id.Role, got, tt.want[i])
				}
			}
			if tt.can(nil) {
				t.Errorf("%s(nil) = true, want false", tt.name)
			}
		})
	}
}

func TestPolicyUnknownRole(t *testing.T) {
	unknown := identityWithRole(models.Role("INTRUDER"))
	for name, can := range map[string]func(*Identity) bool{
		"CanManageUsers":    CanManageUsers,
		"CanPublish":        CanPublish,
		"CanEditPosts":      CanEditPosts,
		"CanManageSettings": CanManageSettings,
	} {
		if can(unknown) {
			t.Errorf("%s granted to unknown role", name)
		}
	}
}
