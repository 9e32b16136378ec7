// Package migrations схема базы движка бронирования, встроенная в бинарник
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
