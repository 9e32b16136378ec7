package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"  // Ожидает решения учителя
	RequestAccepted RequestStatus = "accepted" // Принята, создано занятие
	RequestRejected RequestStatus = "rejected" // Отклонена учителем или слот стал недоступен
)

// ParseRequestStatus разбирает статус заявки; пустая строка означает "любой"
func ParseRequestStatus(s string) (*RequestStatus, error) {
	if s == "" {
		return nil, nil
	}
	status := RequestStatus(s)
	switch status {
	case RequestPending, RequestAccepted, RequestRejected:
		return &status, nil
	}
	return nil, fmt.Errorf("%w: unknown request status %q", ErrValidation, s)
}

// Rank порядок статусов в списках учителя: сначала то, что требует действия
func (s RequestStatus) Rank() int {
	switch s {
	case RequestPending:
		return 1
	case RequestAccepted:
		return 2
	case RequestRejected:
		return 3
	}
	return 4
}

// IsActive заявка удерживает слот: ожидающая всегда, принятая пока слот
// привязан к занятию
func (s RequestStatus) IsActive(slotBound bool) bool {
	switch s {
	case RequestPending:
		return true
	case RequestAccepted:
		return slotBound
	}
	return false
}

// SlotSnapshot дата и время слота на момент создания заявки
type SlotSnapshot struct {
	Date      Date    `json:"date"`
	StartHour float64 `json:"start_hour"`
	EndHour   float64 `json:"end_hour"`
}

// SnapshotOf фиксирует дату и часы слота
func SnapshotOf(slot *Slot) SlotSnapshot {
	return SlotSnapshot{Date: slot.Date, StartHour: slot.StartHour, EndHour: slot.EndHour}
}

// BookingRequest заявка студента на слот учителя
type BookingRequest struct {
	ID          uuid.UUID     `json:"id"`
	StudentID   string        `json:"student_id"`
	TeacherID   string        `json:"teacher_id"`
	SlotID      uuid.UUID     `json:"slot_id"`
	Status      RequestStatus `json:"status"`
	Requested   SlotSnapshot  `json:"requested"`
	StudentNote string        `json:"student_note,omitempty"`
	TeacherNote string        `json:"teacher_note,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
}

func (r *BookingRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Clone возвращает независимую копию
func (r *BookingRequest) Clone() *BookingRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
