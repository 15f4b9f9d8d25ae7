// Package migrations embeds the SQL migration scripts.
package migrations

import "embed"

// FS contains all .up.sql migration files, applied in version order.
//
//go:embed *.sql
var FS embed.FS
