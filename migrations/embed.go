// Package migrations embeds SQL migration files into the binary.
//
// Each supported driver has its own subdirectory. Version numbers are
// shared so both schemas evolve in lockstep.
package migrations

import (
	"embed"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
