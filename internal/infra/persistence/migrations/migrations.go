// Package migrations embeds the SQL schema migrations applied with goose.
package migrations

import "embed"

// FS holds the versioned SQL files.
//
//go:embed *.sql
var FS embed.FS
