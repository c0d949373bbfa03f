package handlers

import (
	"log/slog"
	"net/http"

	"errsite/internal/auth"
	"errsite/internal/middleware"
	"errsite/internal/render"
	"errsite/internal/session"
	"errsite/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Resolver
	users    *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Resolver, users *store.UserStore) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, users: users}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in: straight to the dashboard.
	if middleware.IdentityFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{Title: "Sign In"})
}

// LoginSubmit processes the login form. Unknown email and wrong
// password produce the same message; the form never reveals which.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.users.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Sign In",
			Error: "An unexpected error occurred.",
		})
		return
	}

	if user == nil || !user.IsActive || !auth.VerifyPassword(password, user.PasswordHash) {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Sign In",
			Error: "Invalid email or password.",
		})
		return
	}

	if err := a.sessions.Issue(w, auth.TokenPayload{UserID: user.ID, Role: user.Role}); err != nil {
		slog.Error("session issue failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout clears the session cookie and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Clear(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
