package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/models"
	"errsite/internal/store"
)

func newTestResolver(t *testing.T) (*Resolver, *auth.Tokens, sqlmock.Sqlmock) {
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
	return NewResolver(tokens, store.NewUserStore(db), false), tokens, mock
}

func userRows(id uuid.UUID, email string, role models.Role, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
		AddRow(id.String(), email, "$2a$12$hash", string(role), active, now, now)
}

func requestWithToken(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return r
}

func TestResolveNoCookie(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	identity, err := resolver.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity != nil {
		t.Fatal("expected nil identity without a cookie")
	}
}

func TestResolveBadToken(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	identity, err := resolver.Resolve(requestWithToken("garbage"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity != nil {
		t.Fatal("expected nil identity for an unverifiable token")
	}
}

func TestResolveActiveUser(t *testing.T) {
	resolver, tokens, mock := newTestResolver(t)

	userID := uuid.New()
	token, err := tokens.Issue(auth.TokenPayload{UserID: userID, Role: models.RoleEditor})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(userRows(userID, "editor@example.com", models.RoleEditor, true))

	identity, err := resolver.Resolve(requestWithToken(token))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity for an active user")
	}
	if identity.ID != userID || identity.Email != "editor@example.com" || identity.Role != models.RoleEditor {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// A deactivated user keeps a validly signed token until it expires; the
// liveness check must still refuse to resolve it.
func TestResolveDeactivatedUser(t *testing.T) {
	resolver, tokens, mock := newTestResolver(t)

	userID := uuid.New()
	token, err := tokens.Issue(auth.TokenPayload{UserID: userID, Role: models.RoleEditor})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(userRows(userID, "editor@example.com", models.RoleEditor, false))

	identity, err := resolver.Resolve(requestWithToken(token))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity != nil {
		t.Fatal("expected nil identity for a deactivated user")
	}
}

func TestResolveDeletedUser(t *testing.T) {
	resolver, tokens, mock := newTestResolver(t)

	token, err := tokens.Issue(auth.TokenPayload{UserID: uuid.New(), Role: models.RoleEditor})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}))

	identity, err := resolver.Resolve(requestWithToken(token))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity != nil {
		t.Fatal("expected nil identity for an unknown user")
	}
}

// The token carries the role held at login; resolution reflects the
// current row, so a role change applies on the next request.
func TestResolveReflectsCurrentRole(t *testing.T) {
	resolver, tokens, mock := newTestResolver(t)

	userID := uuid.New()
	token, err := tokens.Issue(auth.TokenPayload{UserID: userID, Role: models.RoleEditor})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(userRows(userID, "editor@example.com", models.RoleStateAdmin, true))

	identity, err := resolver.Resolve(requestWithToken(token))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity == nil || identity.Role != models.RoleStateAdmin {
		t.Fatalf("expected the database role, got %+v", identity)
	}
}

func TestIssueSetsCookie(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	w := httptest.NewRecorder()
	err := resolver.Issue(w, auth.TokenPayload{UserID: uuid.New(), Role: models.RoleEditor})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("cookie name = %q", c.Name)
	}
	if !c.HttpOnly {
		t.Error("cookie not HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v", c.SameSite)
	}
	if c.MaxAge != int(time.Hour/time.Second) {
		t.Errorf("cookie MaxAge = %d", c.MaxAge)
	}
	if c.Value == "" {
		t.Error("cookie value empty")
	}
}

func TestClearExpiresCookie(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	w := httptest.NewRecorder()
	resolver.Clear(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative", cookies[0].MaxAge)
	}
}
