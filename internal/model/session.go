package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCancelled SessionStatus = "cancelled"
)

// Session подтверждённое (или отменённое) занятие
type Session struct {
	ID               uuid.UUID     `json:"id"`
	StudentID        string        `json:"student_id"`
	TeacherID        string        `json:"teacher_id"`
	SlotID           uuid.UUID     `json:"slot_id"`
	Status           SessionStatus `json:"status"`
	BookingRequestID *uuid.UUID    `json:"booking_request_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty"`
}

func (s *Session) IsScheduled() bool {
	return s.Status == SessionScheduled
}

// Involves проверяет, является ли пользователь студентом или учителем занятия
func (s *Session) Involves(userID string) bool {
	return s.StudentID == userID || s.TeacherID == userID
}

// Clone возвращает независимую копию
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.BookingRequestID != nil {
		id := *s.BookingRequestID
		c.BookingRequestID = &id
	}
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}
