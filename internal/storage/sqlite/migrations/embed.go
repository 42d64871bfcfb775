// Package migrations embeds the result store schema.
package migrations

import "embed"

// FS holds the ordered .sql migrations for the result store.
//
//go:embed *.sql
var FS embed.FS
