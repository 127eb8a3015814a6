// Package migrations embeds SQL migration files for the warehouse store.
//
// Files are named NNN_description.up.sql and NNN_description.down.sql and are
// applied in version order. Each up migration records its own version in
// schema_migrations.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
