package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateText проверяет, что строку примет TEXT-колонка Postgres:
// валидный UTF-8 без нулевых байтов
func ValidateText(field, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s must be valid UTF-8", ErrValidation, field)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: %s must not contain NUL bytes", ErrValidation, field)
	}
	return nil
}

// ValidateID проверяет идентификатор пользователя
func ValidateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return ValidateText(field, id)
}
