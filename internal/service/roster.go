package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Roster подписки студентов на учителей ("Мои учителя" / "Мои ученики")
type Roster struct {
	mu        sync.RWMutex
	byStudent map[string]map[string]model.Subscription
	byTeacher map[string]map[string]struct{}
	recorder  model.Recorder
	clock     model.Clock
}

func NewRoster(recorder model.Recorder, clock model.Clock) *Roster {
	if recorder == nil {
		recorder = model.NopRecorder{}
	}
	if clock == nil {
		clock = model.SystemClock
	}
	return &Roster{
		byStudent: make(map[string]map[string]model.Subscription),
		byTeacher: make(map[string]map[string]struct{}),
		recorder:  recorder,
		clock:     clock,
	}
}

// Subscribe добавляет учителя студенту; повторная подписка ничего не меняет
func (r *Roster) Subscribe(studentID, teacherID string) error {
	if err := model.ValidateID("student id", studentID); err != nil {
		return err
	}
	if err := model.ValidateID("teacher id", teacherID); err != nil {
		return err
	}
	if studentID == teacherID {
		return fmt.Errorf("%w: cannot subscribe to yourself", model.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byStudent[studentID][teacherID]; ok {
		return nil
	}

	sub := model.Subscription{StudentID: studentID, TeacherID: teacherID, CreatedAt: r.clock.Now()}
	r.insert(sub)
	r.recorder.Record(model.SubscriptionSaved(sub))
	return nil
}

// Unsubscribe удаляет подписку
func (r *Roster) Unsubscribe(studentID, teacherID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byStudent[studentID][teacherID]
	if !ok {
		return fmt.Errorf("subscription %w", model.ErrNotFound)
	}

	delete(r.byStudent[studentID], teacherID)
	delete(r.byTeacher[teacherID], studentID)
	r.recorder.Record(model.SubscriptionDeleted(sub))
	return nil
}

// TeachersOf ID учителей студента в лексикографическом порядке
func (r *Roster) TeachersOf(studentID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byStudent[studentID]))
	for id := range r.byStudent[studentID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// StudentsOf ID учеников учителя в лексикографическом порядке
func (r *Roster) StudentsOf(teacherID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byTeacher[teacherID]))
	for id := range r.byTeacher[teacherID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Roster) Restore(subs []model.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range subs {
		r.insert(sub)
	}
}

func (r *Roster) insert(sub model.Subscription) {
	if r.byStudent[sub.StudentID] == nil {
		r.byStudent[sub.StudentID] = make(map[string]model.Subscription)
	}
	if r.byTeacher[sub.TeacherID] == nil {
		r.byTeacher[sub.TeacherID] = make(map[string]struct{})
	}
	r.byStudent[sub.StudentID][sub.TeacherID] = sub
	r.byTeacher[sub.TeacherID][sub.StudentID] = struct{}{}
}
