package service

import (
	"slices"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RestoreReport итог загрузки состояния
type RestoreReport struct {
	Slots             int
	Requests          int
	Sessions          int
	Subscriptions     int
	ClearedBindings   int
	CancelledSessions int
	RejectedRequests  int
}

// Restore загружает сохранённое состояние в пустой движок и восстанавливает
// ссылочную целостность:
//   - привязка слота, не указывающая на запланированное занятие того же учителя, снимается;
//   - запланированное занятие без своего слота отменяется;
//   - ожидающая заявка на несуществующий слот отклоняется.
//
// Исправления записываются в recorder как обычные изменения.
func (s *BookingService) Restore(snapshot model.Snapshot) RestoreReport {
	report := RestoreReport{
		Slots:         len(snapshot.Slots),
		Requests:      len(snapshot.Requests),
		Sessions:      len(snapshot.Sessions),
		Subscriptions: len(snapshot.Subscriptions),
	}

	sessions := make(map[uuid.UUID]*model.Session, len(snapshot.Sessions))
	for _, session := range snapshot.Sessions {
		sessions[session.ID] = session.Clone()
	}

	slots := make(map[uuid.UUID]*model.Slot, len(snapshot.Slots))
	for _, slot := range snapshot.Slots {
		slot = slot.Clone()
		slots[slot.ID] = slot

		if slot.SessionID == nil {
			continue
		}
		session, ok := sessions[*slot.SessionID]
		if ok && session.IsScheduled() && session.TeacherID == slot.TeacherID && session.SlotID == slot.ID {
			continue
		}

		slot.SessionID = nil
		s.recorder.Record(model.SlotSaved(slot))
		report.ClearedBindings++
	}

	now := s.clock.Now()
	for _, session := range sortedSessions(sessions) {
		if !session.IsScheduled() {
			continue
		}

		slot, ok := slots[session.SlotID]
		if ok && slot.TeacherID == session.TeacherID {
			if slot.SessionID == nil {
				id := session.ID
				slot.SessionID = &id
				s.recorder.Record(model.SlotSaved(slot))
				continue
			}
			if *slot.SessionID == session.ID {
				continue
			}
		}

		session.Status = model.SessionCancelled
		session.CancelledAt = &now
		s.recorder.Record(model.SessionSaved(session))
		report.CancelledSessions++
	}

	restoredSlots := make([]*model.Slot, 0, len(slots))
	for _, slot := range snapshot.Slots {
		restoredSlots = append(restoredSlots, slots[slot.ID])
	}
	restoredSessions := make([]*model.Session, 0, len(sessions))
	for _, session := range snapshot.Sessions {
		restoredSessions = append(restoredSessions, sessions[session.ID])
	}

	s.store.Restore(restoredSlots)
	s.ledger.Restore(restoredSessions)
	s.workflow.Restore(snapshot.Requests)
	s.roster.Restore(snapshot.Subscriptions)

	report.RejectedRequests = len(s.workflow.RejectOrphans())

	s.logger.Info("State restored",
		zap.Int("slots", report.Slots),
		zap.Int("requests", report.Requests),
		zap.Int("sessions", report.Sessions),
		zap.Int("subscriptions", report.Subscriptions),
		zap.Int("cleared_bindings", report.ClearedBindings),
		zap.Int("cancelled_sessions", report.CancelledSessions),
		zap.Int("rejected_requests", report.RejectedRequests),
	)
	return report
}

// sortedSessions занятия в порядке создания: при двух занятиях на одном слоте
// слот достаётся более раннему
func sortedSessions(sessions map[uuid.UUID]*model.Session) []*model.Session {
	result := make([]*model.Session, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, session)
	}
	slices.SortFunc(result, func(a, b *model.Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return result
}
