// Package session resolves the signed session cookie to an authenticated
// identity. Sessions are not stored server-side: validity is the token's
// signature and expiry plus a liveness check against the user row. A
// deactivated or deleted user resolves to nil even with a valid token.
package session

import (
	"net/http"
	"time"

	"errsite/internal/auth"
	"errsite/internal/store"
)

// CookieName is the name of the session cookie sent to the browser.
const CookieName = "err_session"

// Resolver turns an inbound request into an authenticated identity.
type Resolver struct {
	tokens        *auth.Tokens
	users         *store.UserStore
	secureCookies bool
}

// NewResolver creates a session resolver. secureCookies marks issued
// cookies as HTTPS-only and should be true outside development.
func NewResolver(tokens *auth.Tokens, users *store.UserStore, secureCookies bool) *Resolver {
	return &Resolver{tokens: tokens, users: users, secureCookies: secureCookies}
}

// Resolve extracts the session token from the request cookie and returns
// the authenticated identity, or nil for any failure: no cookie, bad
// token, unknown user, inactive user. There is no partial identity and
// no error for expected conditions.
func (s *Resolver) Resolve(r *http.Request) (*auth.Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	payload, ok := s.tokens.Verify(cookie.Value)
	if !ok {
		return nil, nil
	}

	// Liveness check: the token is only as good as the user row behind it.
	user, err := s.users.FindByID(payload.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}

	return &auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Issue signs a token for the user and sets the session cookie. The
// cookie's Max-Age matches the token's embedded expiry.
func (s *Resolver) Issue(w http.ResponseWriter, p auth.TokenPayload) error {
	token, err := s.tokens.Issue(p)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.TTL() / time.Second),
	})
	return nil
}

// Clear expires the session cookie. The token itself stays valid until
// its embedded expiry; there is no server-side revocation list.
func (s *Resolver) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
