// Package store provides database access methods for all site entities.
// Each store struct wraps a querier and exposes typed query methods.
// Stores are constructed once with *sql.DB; mutations that must commit
// together with their audit entry run through WithTx copies bound to a
// single transaction.
package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// foreignKeyViolation is the SQLSTATE for foreign key constraint errors.
const foreignKeyViolation = "23503"

// IsUniqueViolation reports whether err is a unique constraint violation.
// The database is the authority for slug and email uniqueness; concurrent
// inserts race and exactly one loses with this error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation,
// e.g. a grant referencing a user or locality that no longer exists.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
