// Package migrations nhúng các file SQL schema, cmd/migrate apply theo thứ tự tên file.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
