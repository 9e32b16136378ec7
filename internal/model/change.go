package model

import "github.com/google/uuid"

// ChangeKind тип изменения состояния движка
type ChangeKind string

const (
	ChangeSlotSaved           ChangeKind = "slot_saved"
	ChangeSlotDeleted         ChangeKind = "slot_deleted"
	ChangeRequestSaved        ChangeKind = "request_saved"
	ChangeRequestDeleted      ChangeKind = "request_deleted"
	ChangeSessionSaved        ChangeKind = "session_saved"
	ChangeSubscriptionSaved   ChangeKind = "subscription_saved"
	ChangeSubscriptionDeleted ChangeKind = "subscription_deleted"
)

// Change запись об изменении; сущности хранятся копиями на момент изменения
type Change struct {
	Kind         ChangeKind
	ID           uuid.UUID
	Slot         *Slot
	Request      *BookingRequest
	Session      *Session
	Subscription *Subscription
}

func SlotSaved(s *Slot) Change { return Change{Kind: ChangeSlotSaved, ID: s.ID, Slot: s.Clone()} }
func SlotDeleted(id uuid.UUID) Change { return Change{Kind: ChangeSlotDeleted, ID: id} }
func RequestSaved(r *BookingRequest) Change {
	return Change{Kind: ChangeRequestSaved, ID: r.ID, Request: r.Clone()}
}
func RequestDeleted(id uuid.UUID) Change { return Change{Kind: ChangeRequestDeleted, ID: id} }
func SessionSaved(s *Session) Change {
	return Change{Kind: ChangeSessionSaved, ID: s.ID, Session: s.Clone()}
}
func SubscriptionSaved(s Subscription) Change {
	return Change{Kind: ChangeSubscriptionSaved, Subscription: &s}
}
func SubscriptionDeleted(s Subscription) Change {
	return Change{Kind: ChangeSubscriptionDeleted, Subscription: &s}
}

// Recorder принимает изменения. Вызывается внутри критических секций,
// поэтому реализация не должна делать ввод-вывод или блокироваться надолго.
type Recorder interface {
	Record(changes ...Change)
}

// NopRecorder отбрасывает изменения (режим без хранилища)
type NopRecorder struct{}

func (NopRecorder) Record(...Change) {}

// Snapshot полное состояние для загрузки из хранилища
type Snapshot struct {
	Slots         []*Slot
	Requests      []*BookingRequest
	Sessions      []*Session
	Subscriptions []Subscription
}
