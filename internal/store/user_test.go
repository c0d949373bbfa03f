package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"errsite/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(email, "$2a$12$fakehash", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
	if user.Role != models.RoleEditor {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleEditor)
	}
	if !user.IsActive {
		t.Error("expected new user to be active")
	}
}

func TestUserStoreCreateLowercasesEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	t.Cleanup(func() { cleanUsers(t, db, "test-case@store-test.local") })

	user, err := s.Create("Test-Case@Store-Test.LOCAL", "$2a$12$fakehash", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Email != "test-case@store-test.local" {
		t.Errorf("email stored as %q, want lowercase", user.Email)
	}
}

func TestUserStoreFindByEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-findbyemail@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	// Not found case.
	user, err := s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created, err := s.Create(email, "$2a$12$fakehash", models.RoleStateAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Lookup normalizes case the same way Create does.
	user, err = s.FindByEmail("Test-FindByEmail@Store-Test.LOCAL")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", user.ID, created.ID)
	}
}

func TestUserStoreFindByID(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-findbyid@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	// Not found.
	user, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for random UUID")
	}

	created, _ := s.Create(email, "$2a$12$fakehash", models.RoleLocalityAdmin)
	user, err = s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
}

func TestUserStoreSetActive(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-setactive@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, _ := s.Create(email, "$2a$12$fakehash", models.RoleEditor)

	if err := s.SetActive(user.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	user, _ = s.FindByID(user.ID)
	if user.IsActive {
		t.Error("expected user deactivated")
	}

	if err := s.SetActive(user.ID, true); err != nil {
		t.Fatalf("SetActive (reactivate): %v", err)
	}
	user, _ = s.FindByID(user.ID)
	if !user.IsActive {
		t.Error("expected user reactivated")
	}

	if err := s.SetActive(uuid.New(), false); err != sql.ErrNoRows {
		t.Errorf("SetActive unknown id: err = %v, want sql.ErrNoRows", err)
	}
}

func TestUserStoreSetRole(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-setrole@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, _ := s.Create(email, "$2a$12$fakehash", models.RoleEditor)

	if err := s.SetRole(user.ID, models.RoleLocalityAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	user, _ = s.FindByID(user.ID)
	if user.Role != models.RoleLocalityAdmin {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleLocalityAdmin)
	}

	if err := s.SetRole(uuid.New(), models.RoleEditor); err != sql.ErrNoRows {
		t.Errorf("SetRole unknown id: err = %v, want sql.ErrNoRows", err)
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-dupe@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	if _, err := s.Create(email, "$2a$12$fakehash", models.RoleEditor); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := s.Create(email, "$2a$12$fakehash", models.RoleEditor)
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation for duplicate email, got %v", err)
	}
}
