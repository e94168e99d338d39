package clarity

import "embed"

// MigrationsFS holds the SQL migrations applied on startup when the
// Postgres history backend is configured.
//
//go:embed migrations
var MigrationsFS embed.FS
