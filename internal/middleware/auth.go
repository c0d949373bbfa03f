package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"errsite/internal/auth"
	"errsite/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// identityKey is the context key for the authenticated identity.
	identityKey contextKey = "identity"
)

// LoadSession resolves the session cookie to an identity and stores it
// in the request context. Downstream handlers access it via
// IdentityFromCtx(). This middleware does NOT enforce authentication;
// an unauthenticated request passes through with no identity. Mutation
// handlers that want an explicit resolution call resolver.Resolve(r)
// themselves; both paths yield the same identity for the same token.
func LoadSession(resolver *session.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r)
			if err != nil {
				// Resolve only errs when the user lookup itself fails.
				// Proceeding anonymously would turn a database outage
				// into a silent logout, so fail the request instead.
				slog.Error("session resolution failed", "error", err, "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if identity != nil {
				ctx := context.WithValue(r.Context(), identityKey, identity)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects unauthenticated users to the login page.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromCtx(r.Context()) == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireCapability returns 403 unless the authenticated identity passes
// the given policy predicate. Must be applied after RequireAuth.
func RequireCapability(can func(*auth.Identity) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !can(IdentityFromCtx(r.Context())) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromCtx extracts the authenticated identity from the request
// context. Returns nil if no session is loaded.
func IdentityFromCtx(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}
