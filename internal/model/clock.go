package model

import "time"

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// ClockFunc адаптер функции к Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock системные часы
var SystemClock Clock = ClockFunc(time.Now)
