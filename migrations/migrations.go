// Package migrations embeds the SQL schema migrations so the binaries can
// apply them without shipping the directory.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file
//
//go:embed *.sql
var FS embed.FS
