package identity

import "embed"

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// The layout is dialect-aware: root files under data/sql/migrations are
// PostgreSQL, SQLite overrides live in data/sql/migrations/sqlite. The
// go-persistence-bun loader selects the correct set for the active dialect.
//
// Usage:
//
//	import "io/fs"
//	import identity "github.com/goliatone/go-identity"
//	import persistence "github.com/goliatone/go-persistence-bun"
//
//	migrationsFS, _ := fs.Sub(identity.GetMigrationsFS(), "data/sql/migrations")
//	client.RegisterDialectMigrations(
//	    migrationsFS,
//	    persistence.WithDialectSourceLabel("."),
//	    persistence.WithValidationTargets("postgres", "sqlite"),
//	)
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var MigrationsFS embed.FS

// GetMigrationsFS exposes the SQL migration files so host applications can
// register them with go-persistence-bun or another runner.
func GetMigrationsFS() embed.FS {
	return MigrationsFS
}
