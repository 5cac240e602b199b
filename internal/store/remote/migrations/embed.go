// Package migrations embeds the Postgres schema migrations for the hosted
// sync store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
