// Package migrations embeds the goose migration scripts for the user
// registry schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
