// Package migrations embeds the client journal schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
