package model

import (
	"errors"
	"fmt"
)

// Классы ошибок движка бронирования. Все они восстановимы вызывающей стороной.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation error")
	ErrConflict               = errors.New("slot overlaps an existing slot")
	ErrSlotUnavailable        = errors.New("slot unavailable")
	ErrSlotNoLongerAvailable  = errors.New("slot no longer available")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Уточнения, оборачивающие базовые классы
var (
	ErrSlotNotFound     = fmt.Errorf("slot %w", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("booking request %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session %w", ErrNotFound)
	ErrNotPending       = fmt.Errorf("%w: booking request is not pending", ErrInvalidStateTransition)
	ErrAlreadyCancelled = fmt.Errorf("%w: session already cancelled", ErrInvalidStateTransition)
	ErrSlotBound        = fmt.Errorf("%w: slot is bound to a session", ErrInvalidStateTransition)
)
