// Package migrations embeds the Postgres schema applied by escrowctl migrate.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
