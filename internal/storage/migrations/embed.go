// Package migrations embeds the goose migration scripts for the hosted
// PostgreSQL store (profiles and the call-attempt audit log).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
