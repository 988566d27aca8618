package migrations

import "embed"

// FS contains embedded SQLite migrations for dev upstream records.
//
//go:embed *.sql
var FS embed.FS
