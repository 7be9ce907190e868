// Package migrations embeds the service's SQL schema files.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
