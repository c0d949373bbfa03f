package authz

import "errors"

// Rejection taxonomy for privileged mutations. The gate is the single
// place that turns a denial into one of these; session resolution and
// the role policy below it report nil/false, never errors.
var (
	// ErrUnauthenticated means no valid session accompanied the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity lacks the capability or the target
	// locality is outside its scope.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a uniqueness constraint (slug, email, grant pair)
	// rejected the mutation.
	ErrConflict = errors.New("conflict")
	// ErrNotFound means the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
)
