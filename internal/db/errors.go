package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrNoRows      = errors.New("db: no rows")
)

// Op constants name the failing operation for error context.
const (
	OpQuery       = "QUERY"
	OpQueryScalar = "QUERY SCALAR"
	OpExec        = "EXEC"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error wraps an underlying backend error with the operation and, for SQL
// operations, the query text, so callers can retry or report with context.
type Error struct {
	Op    string
	Query string
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return e.Op + " " + e.Query + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
