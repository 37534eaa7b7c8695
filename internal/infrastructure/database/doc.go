// Package database provides SQL connectivity for Inventar Core.
//
// This package manages:
//   - Connections to SQLite (mattn/go-sqlite3) or PostgreSQL (pgx stdlib)
//   - Dialect helpers: placeholder rebinding, goqu builders, time values
//   - Constraint violation classification for both drivers
//   - Schema migrations, one directory per driver with shared versions
//
// Concurrency:
//
// SQLite uses a single connection and BEGIN IMMEDIATE transactions, so
// read-then-write sequences inside a transaction are serialised. PostgreSQL
// relies on the schema's unique and check constraints; callers classify
// the resulting errors with ConstraintViolation.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The SQLite file is restricted to 0600
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Driver: database.DriverSQLite,
//	    Path:   "./data/inventar.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Files are named YYYYMMDD_HHMMSS_description.{up,down}.sql and live under
// sqlite/ and postgres/ in MigrationsFS. Both directories carry the same
// versions so schema_migrations means the same thing on either store.
package database
