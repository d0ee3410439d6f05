// Package inventory embeds the goose migrations for the inventory document store.
package inventory

import "embed"

//go:embed *.sql
var FS embed.FS
