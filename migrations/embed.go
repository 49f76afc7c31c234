// Package migrations bundles the SQLite schema. Files are applied in version
// order and never edited once released.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
