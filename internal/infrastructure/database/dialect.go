package database

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers "postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // registers "sqlite3"
	"github.com/jmoiron/sqlx"
)

// Driver identifies a supported relational store.
type Driver string

// Supported drivers. The values match the database.driver config key.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// driverName is the database/sql driver registered for d.
func (d Driver) driverName() string {
	if d == DriverPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// goquDialect is the goqu dialect name for d.
func (d Driver) goquDialect() string {
	if d == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Rebind converts a query written with ? placeholders to the driver's
// bindvar style ($1, $2, ... for PostgreSQL).
func (db *DB) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(db.driver.driverName()), query)
}

// Goqu returns a prepared-statement goqu builder for the active dialect.
// Statements built from it render placeholders and an argument list.
func (db *DB) Goqu() goqu.DialectWrapper {
	return goqu.Dialect(db.driver.goquDialect())
}

// TimeValue converts t into the argument form the store compares correctly.
//
// PostgreSQL columns are TIMESTAMPTZ and take time.Time directly.
// SQLite columns are TEXT holding fixed-width UTC timestamps, so the
// value is formatted with FormatTime; lexical order then equals time order.
func (db *DB) TimeValue(t time.Time) any {
	if db.driver == DriverPostgres {
		return t.UTC()
	}
	return FormatTime(t)
}
