// Package availability хранит слоты доступности учителей.
//
// Каждый учитель имеет собственный набор слотов со своим мьютексом. Любая
// операция, которая читает и затем меняет признак занятости слота, выполняется
// под этим мьютексом целиком (см. Store.Update).
package availability

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	teachers map[string]*teacherSlots
	owners   map[uuid.UUID]string // slotID -> teacherID

	recorder model.Recorder
	clock    model.Clock
}

// teacherSlots слоты одного учителя; byDate отсортирован по StartHour
type teacherSlots struct {
	mu     sync.Mutex
	slots  map[uuid.UUID]*model.Slot
	byDate map[model.Date][]*model.Slot
}

// NewStore создаёт пустое хранилище слотов
func NewStore(recorder model.Recorder, clock model.Clock) *Store {
	if recorder == nil {
		recorder = model.NopRecorder{}
	}
	if clock == nil {
		clock = model.SystemClock
	}
	return &Store{
		teachers: make(map[string]*teacherSlots),
		owners:   make(map[uuid.UUID]string),
		recorder: recorder,
		clock:    clock,
	}
}

// ValidateBounds проверяет границы нового слота
func ValidateBounds(teacherID string, date model.Date, start, end float64) error {
	if err := model.ValidateID("teacher id", teacherID); err != nil {
		return err
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", model.ErrValidation)
	}
	if !model.IsValidHour(start) || !model.IsValidHour(end) {
		return fmt.Errorf("%w: hours must be within [0, 24] in 15 minute steps", model.ErrValidation)
	}
	if start >= end {
		return fmt.Errorf("%w: end time must be after start time", model.ErrValidation)
	}
	return nil
}

// CreateSlot создаёт свободный слот, если он не пересекается с другими слотами учителя в ту же дату
func (s *Store) CreateSlot(teacherID string, date model.Date, start, end float64) (*model.Slot, error) {
	if err := ValidateBounds(teacherID, date, start, end); err != nil {
		return nil, err
	}

	set := s.teacher(teacherID)
	set.mu.Lock()
	defer set.mu.Unlock()

	for _, existing := range set.byDate[date] {
		if existing.Overlaps(start, end) {
			return nil, fmt.Errorf("%w: %s %s-%s", model.ErrConflict,
				date, model.FormatHour(existing.StartHour), model.FormatHour(existing.EndHour))
		}
	}

	slot := &model.Slot{
		ID:        uuid.New(),
		TeacherID: teacherID,
		Date:      date,
		StartHour: start,
		EndHour:   end,
		CreatedAt: s.clock.Now(),
	}
	set.insert(slot)

	s.mu.Lock()
	s.owners[slot.ID] = teacherID
	s.mu.Unlock()

	s.recorder.Record(model.SlotSaved(slot))
	return slot.Clone(), nil
}

// DeleteSlot удаляет свободный слот учителя
func (s *Store) DeleteSlot(teacherID string, slotID uuid.UUID) error {
	set := s.lookup(teacherID)
	if set == nil {
		return model.ErrSlotNotFound
	}

	set.mu.Lock()
	defer set.mu.Unlock()

	slot, ok := set.slots[slotID]
	if !ok {
		return model.ErrSlotNotFound
	}
	if slot.IsBound() {
		return model.ErrSlotBound
	}
	set.remove(slot)

	s.mu.Lock()
	delete(s.owners, slotID)
	s.mu.Unlock()

	s.recorder.Record(model.SlotDeleted(slotID))
	return nil
}

// BindSession привязывает занятие к слоту. Предыдущую привязку не проверяет:
// это предусловие обязан проверить вызывающий.
func (s *Store) BindSession(teacherID string, slotID, sessionID uuid.UUID) error {
	return s.Update(teacherID, func(tx *Tx) error {
		return tx.Bind(slotID, sessionID)
	})
}

// UnbindSession снимает привязку занятия независимо от текущего значения
func (s *Store) UnbindSession(teacherID string, slotID uuid.UUID) error {
	return s.Update(teacherID, func(tx *Tx) error {
		return tx.Unbind(slotID)
	})
}

// FindSlot ищет слот по ID среди всех учителей
func (s *Store) FindSlot(slotID uuid.UUID) (*model.Slot, bool) {
	s.mu.RLock()
	teacherID, ok := s.owners[slotID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	set := s.lookup(teacherID)
	if set == nil {
		return nil, false
	}

	set.mu.Lock()
	defer set.mu.Unlock()

	slot, ok := set.slots[slotID]
	if !ok {
		return nil, false
	}
	return slot.Clone(), true
}

// ListSlotsInRange возвращает слоты учителя за период [from, to] включительно,
// упорядоченные по дате и времени начала
func (s *Store) ListSlotsInRange(teacherID string, from, to model.Date) []*model.Slot {
	result := make([]*model.Slot, 0)
	if from.After(to) {
		return result
	}

	set := s.lookup(teacherID)
	if set == nil {
		return result
	}

	set.mu.Lock()
	defer set.mu.Unlock()

	for date, daySlots := range set.byDate {
		if !date.InRange(from, to) {
			continue
		}
		for _, slot := range daySlots {
			result = append(result, slot.Clone())
		}
	}

	SortSlots(result)
	return result
}

// Update выполняет fn под блокировкой набора слотов учителя.
// Ошибка fn возвращается как есть; изменения, сделанные через tx до ошибки, не откатываются.
// Учителю без слотов fn видит пустой набор; в хранилище он не добавляется.
func (s *Store) Update(teacherID string, fn func(tx *Tx) error) error {
	set := s.lookup(teacherID)
	if set == nil {
		set = newTeacherSlots()
	}
	set.mu.Lock()
	defer set.mu.Unlock()

	return fn(&Tx{store: s, teacherID: teacherID, set: set})
}

// Restore загружает слоты без проверки пересечений: ранее сохранённые
// некорректные состояния допускаются для отображения
func (s *Store) Restore(slots []*model.Slot) {
	for _, slot := range slots {
		set := s.teacher(slot.TeacherID)

		set.mu.Lock()
		if existing, ok := set.slots[slot.ID]; ok {
			set.remove(existing)
		}
		set.insert(slot.Clone())
		set.mu.Unlock()

		s.mu.Lock()
		s.owners[slot.ID] = slot.TeacherID
		s.mu.Unlock()
	}
}

// teacher возвращает набор слотов учителя, создавая его при необходимости
func (s *Store) teacher(teacherID string) *teacherSlots {
	if set := s.lookup(teacherID); set != nil {
		return set
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.teachers[teacherID]
	if !ok {
		set = newTeacherSlots()
		s.teachers[teacherID] = set
	}
	return set
}

func newTeacherSlots() *teacherSlots {
	return &teacherSlots{
		slots:  make(map[uuid.UUID]*model.Slot),
		byDate: make(map[model.Date][]*model.Slot),
	}
}

func (s *Store) lookup(teacherID string) *teacherSlots {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teachers[teacherID]
}

func (t *teacherSlots) insert(slot *model.Slot) {
	t.slots[slot.ID] = slot

	day := t.byDate[slot.Date]
	idx, _ := slices.BinarySearchFunc(day, slot.StartHour, func(s *model.Slot, start float64) int {
		switch {
		case s.StartHour < start:
			return -1
		case s.StartHour > start:
			return 1
		}
		return 0
	})
	t.byDate[slot.Date] = slices.Insert(day, idx, slot)
}

func (t *teacherSlots) remove(slot *model.Slot) {
	delete(t.slots, slot.ID)

	day := slices.DeleteFunc(t.byDate[slot.Date], func(s *model.Slot) bool {
		return s.ID == slot.ID
	})
	if len(day) == 0 {
		delete(t.byDate, slot.Date)
		return
	}
	t.byDate[slot.Date] = day
}

// SortSlots упорядочивает слоты по дате, времени начала и учителю
func SortSlots(slots []*model.Slot) {
	slices.SortFunc(slots, func(a, b *model.Slot) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.StartHour < b.StartHour:
			return -1
		case a.StartHour > b.StartHour:
			return 1
		}
		if a.TeacherID != b.TeacherID {
			if a.TeacherID < b.TeacherID {
				return -1
			}
			return 1
		}
		return 0
	})
}
