package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownChange изменение неизвестного вида
var ErrUnknownChange = errors.New("unknown change kind")

// IsPermanent сообщает, что повтор той же записи снова завершится ошибкой:
// неизвестный вид изменения, ошибки данных (класс 22) и нарушения
// ограничений (класс 23) Postgres
func IsPermanent(err error) bool {
	if errors.Is(err, ErrUnknownChange) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}
