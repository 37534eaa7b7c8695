package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Violation classifies an integrity-constraint failure reported by the store.
type Violation int

// Constraint violation kinds.
const (
	NoViolation Violation = iota
	UniqueViolation
	CheckViolation
	ForeignKeyViolation
	NotNullViolation
)

// PostgreSQL SQLSTATE codes (class 23, integrity constraint violation).
const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// String returns a short name for logs.
func (v Violation) String() string {
	switch v {
	case UniqueViolation:
		return "unique"
	case CheckViolation:
		return "check"
	case ForeignKeyViolation:
		return "foreign_key"
	case NotNullViolation:
		return "not_null"
	default:
		return "none"
	}
}

// ConstraintViolation inspects err for a typed driver error and reports
// which kind of constraint was violated. Wrapped errors are unwrapped.
//
// The classification uses sqlite3.Error.ExtendedCode and
// pgconn.PgError.Code; message text is never examined.
func ConstraintViolation(err error) Violation {
	if err == nil {
		return NoViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return UniqueViolation
		case sqlite3.ErrConstraintCheck:
			return CheckViolation
		case sqlite3.ErrConstraintForeignKey:
			return ForeignKeyViolation
		case sqlite3.ErrConstraintNotNull:
			return NotNullViolation
		}
		return NoViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return UniqueViolation
		case pgCheckViolation:
			return CheckViolation
		case pgForeignKeyViolation:
			return ForeignKeyViolation
		case pgNotNullViolation:
			return NotNullViolation
		}
	}

	return NoViolation
}
