// Package ledger ведёт журнал занятий, то есть итогов успешного бронирования.
package ledger

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/availability"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

type Ledger struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*model.Session
	byTeacher map[string][]uuid.UUID
	byStudent map[string][]uuid.UUID

	store    *availability.Store
	recorder model.Recorder
	clock    model.Clock
}

func NewLedger(store *availability.Store, recorder model.Recorder, clock model.Clock) *Ledger {
	if recorder == nil {
		recorder = model.NopRecorder{}
	}
	if clock == nil {
		clock = model.SystemClock
	}
	return &Ledger{
		sessions:  make(map[uuid.UUID]*model.Session),
		byTeacher: make(map[string][]uuid.UUID),
		byStudent: make(map[string][]uuid.UUID),
		store:     store,
		recorder:  recorder,
		clock:     clock,
	}
}

// BookDirect бронирует свободный слот учителя без шага заявки
func (l *Ledger) BookDirect(studentID, teacherID string, slotID uuid.UUID) (*model.Session, error) {
	if err := model.ValidateID("student id", studentID); err != nil {
		return nil, err
	}

	var session *model.Session
	err := l.store.Update(teacherID, func(tx *availability.Tx) error {
		slot, ok := tx.Slot(slotID)
		if !ok || slot.IsBound() {
			return model.ErrSlotUnavailable
		}

		var err error
		session, err = l.BookInTx(tx, studentID, slotID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// BookFromRequest создаёт занятие по принятой заявке. Доступность слота уже
// проверена вызывающим под той же блокировкой tx.
func (l *Ledger) BookFromRequest(tx *availability.Tx, request *model.BookingRequest) (*model.Session, error) {
	requestID := request.ID
	return l.BookInTx(tx, request.StudentID, request.SlotID, &requestID)
}

// BookInTx создаёт запланированное занятие и привязывает его к слоту.
// Журнал занятий заблокирован на всё время привязки, поэтому ни один
// наблюдатель не увидит занятие без привязанного слота и наоборот.
func (l *Ledger) BookInTx(tx *availability.Tx, studentID string, slotID uuid.UUID, requestID *uuid.UUID) (*model.Session, error) {
	if _, ok := tx.Slot(slotID); !ok {
		return nil, model.ErrSlotNotFound
	}

	session := &model.Session{
		ID:               uuid.New(),
		StudentID:        studentID,
		TeacherID:        tx.TeacherID(),
		SlotID:           slotID,
		Status:           model.SessionScheduled,
		BookingRequestID: requestID,
		CreatedAt:        l.clock.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := tx.Bind(slotID, session.ID); err != nil {
		return nil, fmt.Errorf("bind slot: %w", err)
	}
	l.insert(session)
	l.recorder.Record(model.SessionSaved(session))

	return session.Clone(), nil
}

// Cancel отменяет занятие и освобождает слот. Повторная отмена возвращает ошибку.
func (l *Ledger) Cancel(sessionID uuid.UUID) error {
	l.mu.RLock()
	existing, ok := l.sessions[sessionID]
	var teacherID string
	if ok {
		teacherID = existing.TeacherID
	}
	l.mu.RUnlock()

	if !ok {
		return model.ErrSessionNotFound
	}

	return l.store.Update(teacherID, func(tx *availability.Tx) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		session := l.sessions[sessionID]
		if !session.IsScheduled() {
			return model.ErrAlreadyCancelled
		}

		now := l.clock.Now()
		session.Status = model.SessionCancelled
		session.CancelledAt = &now

		// Слот могли удалить только после отмены; чужую привязку не трогаем
		if slot, ok := tx.Slot(session.SlotID); ok && slot.SessionID != nil && *slot.SessionID == session.ID {
			if err := tx.Unbind(session.SlotID); err != nil {
				return fmt.Errorf("unbind slot: %w", err)
			}
		}

		l.recorder.Record(model.SessionSaved(session))
		return nil
	})
}

// Get возвращает занятие по ID в любом статусе
func (l *Ledger) Get(sessionID uuid.UUID) (*model.Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	session, ok := l.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return session.Clone(), true
}

// QueryOption настраивает выборку занятий
type QueryOption func(*query)

type query struct {
	includeCancelled bool
}

// IncludeCancelled включает отменённые занятия (история, аудит)
func IncludeCancelled() QueryOption {
	return func(q *query) { q.includeCancelled = true }
}

// WithCancelled включает отменённые занятия, если include истинно
func WithCancelled(include bool) QueryOption {
	return func(q *query) { q.includeCancelled = include }
}

// ForTeacher занятия учителя
func (l *Ledger) ForTeacher(teacherID string, opts ...QueryOption) []*model.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byTeacher[teacherID], opts)
}

// ForStudent занятия студента
func (l *Ledger) ForStudent(studentID string, opts ...QueryOption) []*model.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byStudent[studentID], opts)
}

// BySlotIDs занятия по набору слотов
func (l *Ledger) BySlotIDs(slotIDs []uuid.UUID, opts ...QueryOption) []*model.Session {
	wanted := make(map[uuid.UUID]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		wanted[id] = struct{}{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]uuid.UUID, 0)
	for id, session := range l.sessions {
		if _, ok := wanted[session.SlotID]; ok {
			ids = append(ids, id)
		}
	}
	return l.collect(ids, opts)
}

// Restore загружает ранее сохранённые занятия
func (l *Ledger) Restore(sessions []*model.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, session := range sessions {
		if _, exists := l.sessions[session.ID]; exists {
			continue
		}
		l.insert(session.Clone())
	}
}

func (l *Ledger) insert(session *model.Session) {
	l.sessions[session.ID] = session
	l.byTeacher[session.TeacherID] = append(l.byTeacher[session.TeacherID], session.ID)
	l.byStudent[session.StudentID] = append(l.byStudent[session.StudentID], session.ID)
}

func (l *Ledger) collect(ids []uuid.UUID, opts []QueryOption) []*model.Session {
	var q query
	for _, opt := range opts {
		opt(&q)
	}

	result := make([]*model.Session, 0, len(ids))
	for _, id := range ids {
		session := l.sessions[id]
		if !q.includeCancelled && !session.IsScheduled() {
			continue
		}
		result = append(result, session.Clone())
	}

	slices.SortFunc(result, func(a, b *model.Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result
}
