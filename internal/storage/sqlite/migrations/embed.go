package migrations

import "embed"

// FS contains embedded SQLite migrations for the finished match archive.
//
//go:embed *.sql
var FS embed.FS
