package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot интервал доступности учителя в конкретную дату
type Slot struct {
	ID        uuid.UUID  `json:"id"`
	TeacherID string     `json:"teacher_id"`
	Date      Date       `json:"date"`
	StartHour float64    `json:"start_hour"` // 0-23.75, шаг 0.25
	EndHour   float64    `json:"end_hour"`   // 0.25-24
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsBound проверяет занят ли слот занятием
func (s *Slot) IsBound() bool {
	return s.SessionID != nil
}

// Duration длительность слота в часах
func (s *Slot) Duration() float64 {
	return s.EndHour - s.StartHour
}

// Overlaps проверяет пересечение с интервалом [start, end)
func (s *Slot) Overlaps(start, end float64) bool {
	return Overlaps(s.StartHour, s.EndHour, start, end)
}

// Clone возвращает независимую копию
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	if s.SessionID != nil {
		id := *s.SessionID
		c.SessionID = &id
	}
	return &c
}

// Overlaps проверяет пересечение полуоткрытых интервалов; соседние слоты не пересекаются
func Overlaps(startA, endA, startB, endB float64) bool {
	return startA < endB && startB < endA
}
