package availability

import (
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

// Tx доступ к слотам одного учителя внутри Store.Update.
// Действителен только до возврата из fn.
type Tx struct {
	store     *Store
	teacherID string
	set       *teacherSlots
}

func (tx *Tx) TeacherID() string {
	return tx.teacherID
}

// Slot возвращает копию слота учителя; чужие и несуществующие слоты не видны
func (tx *Tx) Slot(slotID uuid.UUID) (*model.Slot, bool) {
	slot, ok := tx.set.slots[slotID]
	if !ok {
		return nil, false
	}
	return slot.Clone(), true
}

// Bind идемпотентно записывает ID занятия в слот
func (tx *Tx) Bind(slotID, sessionID uuid.UUID) error {
	slot, ok := tx.set.slots[slotID]
	if !ok {
		return model.ErrSlotNotFound
	}
	if slot.SessionID != nil && *slot.SessionID == sessionID {
		return nil
	}

	id := sessionID
	slot.SessionID = &id
	tx.store.recorder.Record(model.SlotSaved(slot))
	return nil
}

// Unbind очищает привязку занятия
func (tx *Tx) Unbind(slotID uuid.UUID) error {
	slot, ok := tx.set.slots[slotID]
	if !ok {
		return model.ErrSlotNotFound
	}
	if slot.SessionID == nil {
		return nil
	}

	slot.SessionID = nil
	tx.store.recorder.Record(model.SlotSaved(slot))
	return nil
}
