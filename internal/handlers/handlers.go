// Package handlers contains the HTTP handlers for the site. Handlers
// are grouped by concern (admin, public, auth) and receive their
// dependencies through the handler struct. Authorization decisions live
// in the authz gate; handlers only translate HTTP to gate calls and
// gate rejections back to HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"errsite/internal/authz"
)

// urlID parses the {id} route parameter as a UUID.
func urlID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// writeGateError maps a gate rejection to an HTTP response. Validation
// and conflict errors belong on the form that caused them; callers that
// can re-render a form should handle those themselves first.
func writeGateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	case errors.Is(err, authz.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, authz.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, authz.ErrValidation), errors.Is(err, authz.ErrConflict):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// formError returns a message suitable for showing above the form, or
// "" when the error should not be handled by re-rendering.
func formError(err error) string {
	if errors.Is(err, authz.ErrValidation) || errors.Is(err, authz.ErrConflict) {
		return err.Error()
	}
	return ""
}
