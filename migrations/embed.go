// Package migrations embeds the verification schema so the server and the
// integration tests can apply it without shipping loose SQL files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
