package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/models"
	"errsite/internal/session"
	"errsite/internal/store"
)

// requestWithIdentity simulates a request that already passed LoadSession.
func requestWithIdentity(identity *auth.Identity) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if identity != nil {
		r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
	}
	return r
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithIdentity(nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("Location = %q", loc)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	handler := RequireAuth(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithIdentity(&auth.Identity{ID: uuid.New(), Role: models.RoleEditor}))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireCapability(t *testing.T) {
	handler := RequireCapability(auth.CanManageUsers)(okHandler())

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithIdentity(nil))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("insufficient role", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithIdentity(&auth.Identity{ID: uuid.New(), Role: models.RoleStateAdmin}))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("sufficient role", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithIdentity(&auth.Identity{ID: uuid.New(), Role: models.RoleSuperAdmin}))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestIdentityFromCtxEmpty(t *testing.T) {
	if got := IdentityFromCtx(context.Background()); got != nil {
		t.Errorf("IdentityFromCtx on empty context = %+v", got)
	}
}

// newSessionFixture builds a resolver over a mocked database and a
// request carrying a validly signed session cookie for userID.
func newSessionFixture(t *testing.T, userID uuid.UUID) (*session.Resolver, sqlmock.Sqlmock, *http.Request) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	resolver := session.NewResolver(tokens, store.NewUserStore(db), false)

	token, err := tokens.Issue(auth.TokenPayload{UserID: userID, Role: models.RoleEditor})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return resolver, mock, r
}

func TestLoadSessionPopulatesIdentity(t *testing.T) {
	userID := uuid.New()
	resolver, mock, r := newSessionFixture(t, userID)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow(userID.String(), "editor@example.com", "$2a$12$hash", "EDITOR", true, now, now))

	var seen *auth.Identity
	handler := LoadSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromCtx(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if seen == nil || seen.ID != userID {
		t.Fatalf("identity = %+v, want user %s", seen, userID)
	}
}

// A database failure during session resolution must fail the request,
// not demote a logged-in operator to anonymous.
func TestLoadSessionFailsClosedOnLookupError(t *testing.T) {
	resolver, mock, r := newSessionFixture(t, uuid.New())

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnError(errors.New("connection refused"))

	called := false
	handler := LoadSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if called {
		t.Error("downstream handler ran despite the resolution failure")
	}
}

func TestLoadSessionAnonymousPassesThrough(t *testing.T) {
	resolver, mock, _ := newSessionFixture(t, uuid.New())

	var seen *auth.Identity
	handler := LoadSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromCtx(r.Context())
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if seen != nil {
		t.Errorf("identity = %+v, want nil for anonymous request", seen)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database access: %v", err)
	}
}
