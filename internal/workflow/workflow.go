// Package workflow ведёт заявки студентов на слоты учителей.
package workflow

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/availability"
	"github.com/Freeeeeet/lesson_scheduler/internal/ledger"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

// SlotUnavailableNote заметка учителя при автоматическом отклонении заявки
const SlotUnavailableNote = "Slot became unavailable."

type Workflow struct {
	mu        sync.RWMutex
	requests  map[uuid.UUID]*model.BookingRequest
	bySlot    map[uuid.UUID][]uuid.UUID
	byTeacher map[string][]uuid.UUID
	byStudent map[string][]uuid.UUID

	store    *availability.Store
	ledger   *ledger.Ledger
	recorder model.Recorder
	clock    model.Clock
}

func NewWorkflow(store *availability.Store, l *ledger.Ledger, recorder model.Recorder, clock model.Clock) *Workflow {
	if recorder == nil {
		recorder = model.NopRecorder{}
	}
	if clock == nil {
		clock = model.SystemClock
	}
	return &Workflow{
		requests:  make(map[uuid.UUID]*model.BookingRequest),
		bySlot:    make(map[uuid.UUID][]uuid.UUID),
		byTeacher: make(map[string][]uuid.UUID),
		byStudent: make(map[string][]uuid.UUID),
		store:     store,
		ledger:    l,
		recorder:  recorder,
		clock:     clock,
	}
}

// CreateRequest создаёт заявку студента на свободный слот учителя
func (w *Workflow) CreateRequest(studentID, teacherID string, slotID uuid.UUID, note string) (*model.BookingRequest, error) {
	if err := model.ValidateID("student id", studentID); err != nil {
		return nil, err
	}
	if err := model.ValidateText("note", note); err != nil {
		return nil, err
	}

	var created *model.BookingRequest
	err := w.store.Update(teacherID, func(tx *availability.Tx) error {
		slot, ok := tx.Slot(slotID)
		if !ok {
			return model.ErrSlotNotFound
		}
		if slot.IsBound() {
			return model.ErrSlotUnavailable
		}

		w.mu.Lock()
		defer w.mu.Unlock()

		if w.hasActiveLocked(slotID, false) {
			return model.ErrSlotUnavailable
		}

		request := &model.BookingRequest{
			ID:          uuid.New(),
			StudentID:   studentID,
			TeacherID:   teacherID,
			SlotID:      slotID,
			Status:      model.RequestPending,
			Requested:   model.SnapshotOf(slot),
			StudentNote: note,
			CreatedAt:   w.clock.Now(),
		}
		w.insert(request)
		w.recorder.Record(model.RequestSaved(request))

		created = request.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Accept принимает заявку и создаёт занятие. Если слот к этому моменту удалён
// или занят, заявка автоматически отклоняется и возвращается ErrSlotNoLongerAvailable.
func (w *Workflow) Accept(teacherID string, requestID uuid.UUID, teacherNote string) (*model.Session, error) {
	if err := model.ValidateText("note", teacherNote); err != nil {
		return nil, err
	}
	if _, err := w.owned(teacherID, requestID); err != nil {
		return nil, err
	}

	var session *model.Session
	err := w.store.Update(teacherID, func(tx *availability.Tx) error {
		w.mu.Lock()
		defer w.mu.Unlock()

		request, ok := w.requests[requestID]
		if !ok {
			return model.ErrRequestNotFound
		}
		if !request.IsPending() {
			return model.ErrNotPending
		}

		slot, ok := tx.Slot(request.SlotID)
		if !ok || slot.IsBound() {
			note := teacherNote
			if note == "" {
				note = SlotUnavailableNote
			}
			w.resolve(request, model.RequestRejected, note)
			return model.ErrSlotNoLongerAvailable
		}

		var err error
		session, err = w.ledger.BookFromRequest(tx, request)
		if err != nil {
			return fmt.Errorf("book session: %w", err)
		}
		w.resolve(request, model.RequestAccepted, teacherNote)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Reject отклоняет ожидающую заявку
func (w *Workflow) Reject(teacherID string, requestID uuid.UUID, teacherNote string) error {
	if err := model.ValidateText("note", teacherNote); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	request, ok := w.requests[requestID]
	if !ok || request.TeacherID != teacherID {
		return model.ErrRequestNotFound
	}
	if !request.IsPending() {
		return model.ErrNotPending
	}

	w.resolve(request, model.RequestRejected, teacherNote)
	return nil
}

// CancelByStudent удаляет ожидающую заявку студента целиком
func (w *Workflow) CancelByStudent(studentID string, requestID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	request, ok := w.requests[requestID]
	if !ok || request.StudentID != studentID {
		return model.ErrRequestNotFound
	}
	if !request.IsPending() {
		return model.ErrNotPending
	}

	w.remove(request)
	w.recorder.Record(model.RequestDeleted(requestID))
	return nil
}

// RejectOrphans отклоняет ожидающие заявки, чьих слотов больше нет.
// Используется при восстановлении состояния из хранилища.
func (w *Workflow) RejectOrphans() []*model.BookingRequest {
	w.mu.RLock()
	candidates := make([]*model.BookingRequest, 0)
	for _, request := range w.requests {
		if request.IsPending() {
			candidates = append(candidates, request.Clone())
		}
	}
	w.mu.RUnlock()

	rejected := make([]*model.BookingRequest, 0)
	for _, candidate := range candidates {
		_ = w.store.Update(candidate.TeacherID, func(tx *availability.Tx) error {
			if _, ok := tx.Slot(candidate.SlotID); ok {
				return nil
			}

			w.mu.Lock()
			defer w.mu.Unlock()

			request, ok := w.requests[candidate.ID]
			if !ok || !request.IsPending() {
				return nil
			}
			w.resolve(request, model.RequestRejected, SlotUnavailableNote)
			rejected = append(rejected, request.Clone())
			return nil
		})
	}
	return rejected
}

// Get возвращает заявку по ID
func (w *Workflow) Get(requestID uuid.UUID) (*model.BookingRequest, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	request, ok := w.requests[requestID]
	if !ok {
		return nil, false
	}
	return request.Clone(), true
}

// HasActiveRequestForSlot есть ли на слоте ожидающая заявка или принятая,
// чьё занятие всё ещё держит слот
func (w *Workflow) HasActiveRequestForSlot(slotID uuid.UUID) bool {
	bound := false
	if slot, ok := w.store.FindSlot(slotID); ok {
		bound = slot.IsBound()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasActiveLocked(slotID, bound)
}

// HasActiveRequestInTx то же, что HasActiveRequestForSlot, но внутри Store.Update
func (w *Workflow) HasActiveRequestInTx(tx *availability.Tx, slotID uuid.UUID) bool {
	bound := false
	if slot, ok := tx.Slot(slotID); ok {
		bound = slot.IsBound()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasActiveLocked(slotID, bound)
}

// ListForTeacher заявки учителя, status == nil означает любой статус
func (w *Workflow) ListForTeacher(teacherID string, status *model.RequestStatus) []*model.BookingRequest {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.collect(w.byTeacher[teacherID], status)
}

// ListForStudent заявки студента, status == nil означает любой статус
func (w *Workflow) ListForStudent(studentID string, status *model.RequestStatus) []*model.BookingRequest {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.collect(w.byStudent[studentID], status)
}

// Restore загружает ранее сохранённые заявки
func (w *Workflow) Restore(requests []*model.BookingRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, request := range requests {
		if existing, ok := w.requests[request.ID]; ok {
			w.remove(existing)
		}
		w.insert(request.Clone())
	}
}

// owned проверяет, что заявка существует и принадлежит учителю
func (w *Workflow) owned(teacherID string, requestID uuid.UUID) (*model.BookingRequest, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	request, ok := w.requests[requestID]
	if !ok || request.TeacherID != teacherID {
		return nil, model.ErrRequestNotFound
	}
	return request, nil
}

// hasActiveLocked: принятая заявка занимает слот, только пока слот привязан.
// После отмены занятия слот снова доступен для новых заявок.
func (w *Workflow) hasActiveLocked(slotID uuid.UUID, slotBound bool) bool {
	for _, id := range w.bySlot[slotID] {
		if w.requests[id].Status.IsActive(slotBound) {
			return true
		}
	}
	return false
}

func (w *Workflow) resolve(request *model.BookingRequest, status model.RequestStatus, note string) {
	now := w.clock.Now()
	request.Status = status
	request.TeacherNote = note
	request.ResolvedAt = &now
	w.recorder.Record(model.RequestSaved(request))
}

func (w *Workflow) insert(request *model.BookingRequest) {
	w.requests[request.ID] = request
	w.bySlot[request.SlotID] = append(w.bySlot[request.SlotID], request.ID)
	w.byTeacher[request.TeacherID] = append(w.byTeacher[request.TeacherID], request.ID)
	w.byStudent[request.StudentID] = append(w.byStudent[request.StudentID], request.ID)
}

func (w *Workflow) remove(request *model.BookingRequest) {
	delete(w.requests, request.ID)
	w.bySlot[request.SlotID] = without(w.bySlot[request.SlotID], request.ID)
	w.byTeacher[request.TeacherID] = without(w.byTeacher[request.TeacherID], request.ID)
	w.byStudent[request.StudentID] = without(w.byStudent[request.StudentID], request.ID)
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return slices.DeleteFunc(ids, func(v uuid.UUID) bool { return v == id })
}

func (w *Workflow) collect(ids []uuid.UUID, status *model.RequestStatus) []*model.BookingRequest {
	result := make([]*model.BookingRequest, 0, len(ids))
	for _, id := range ids {
		request := w.requests[id]
		if status != nil && request.Status != *status {
			continue
		}
		result = append(result, request.Clone())
	}
	SortRequests(result)
	return result
}

// SortRequests упорядочивает заявки: pending, accepted, rejected; внутри статуса новые первыми
func SortRequests(requests []*model.BookingRequest) {
	slices.SortFunc(requests, func(a, b *model.BookingRequest) int {
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() - b.Status.Rank()
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
