package service

import (
	"fmt"
	"slices"

	"github.com/Freeeeeet/lesson_scheduler/internal/availability"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Границы окна календаря доступности
const (
	DefaultCalendarWeeks = 5
	MaxCalendarWeeks     = 26
)

// Lesson занятие вместе со слотом и исходной заявкой (если была)
type Lesson struct {
	Session *model.Session        `json:"session"`
	Slot    *model.Slot           `json:"slot"`
	Request *model.BookingRequest `json:"request,omitempty"`
}

// Dashboard сводка для главного экрана пользователя
type Dashboard struct {
	UpcomingAsTeacher int `json:"upcoming_as_teacher"`
	UpcomingAsStudent int `json:"upcoming_as_student"`
	PendingIncoming   int `json:"pending_incoming"`
	PendingOutgoing   int `json:"pending_outgoing"`
	Students          int `json:"students"`
	Teachers          int `json:"teachers"`
}

// CalendarDay свободные слоты одного дня
type CalendarDay struct {
	Date      model.Date    `json:"date"`
	Available int           `json:"available"`
	Slots     []*model.Slot `json:"slots"`
}

// Calendar окно доступности, выровненное по понедельникам
type Calendar struct {
	From model.Date    `json:"from"`
	To   model.Date    `json:"to"`
	Days []CalendarDay `json:"days"`
}

// UpcomingLessons запланированные занятия пользователя в роли role,
// начиная с сегодняшней даты, по дате и времени начала
func (s *BookingService) UpcomingLessons(userID string, role model.Role) []Lesson {
	var sessions []*model.Session
	if role == model.RoleTeacher {
		sessions = s.ledger.ForTeacher(userID)
	} else {
		sessions = s.ledger.ForStudent(userID)
	}

	today := model.DateOf(s.clock.Now())
	lessons := make([]Lesson, 0, len(sessions))
	for _, session := range sessions {
		slot, ok := s.store.FindSlot(session.SlotID)
		if !ok || slot.Date.Before(today) {
			continue
		}

		lesson := Lesson{Session: session, Slot: slot}
		if session.BookingRequestID != nil {
			if request, ok := s.workflow.Get(*session.BookingRequestID); ok {
				lesson.Request = request
			}
		}
		lessons = append(lessons, lesson)
	}

	slices.SortFunc(lessons, func(a, b Lesson) int {
		if c := a.Slot.Date.Compare(b.Slot.Date); c != 0 {
			return c
		}
		switch {
		case a.Slot.StartHour < b.Slot.StartHour:
			return -1
		case a.Slot.StartHour > b.Slot.StartHour:
			return 1
		}
		return 0
	})
	return lessons
}

// Dashboard счётчики предстоящих занятий, заявок и подписок
func (s *BookingService) Dashboard(userID string) Dashboard {
	pending := model.RequestPending
	return Dashboard{
		UpcomingAsTeacher: len(s.UpcomingLessons(userID, model.RoleTeacher)),
		UpcomingAsStudent: len(s.UpcomingLessons(userID, model.RoleStudent)),
		PendingIncoming:   len(s.workflow.ListForTeacher(userID, &pending)),
		PendingOutgoing:   len(s.workflow.ListForStudent(userID, &pending)),
		Students:          len(s.roster.StudentsOf(userID)),
		Teachers:          len(s.roster.TeachersOf(userID)),
	}
}

// AvailableSlots свободные слоты нескольких учителей за период: без занятия
// и без активной заявки, по дате, времени начала и учителю
func (s *BookingService) AvailableSlots(teacherIDs []string, from, to model.Date) ([]*model.Slot, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(teacherIDs))
	result := make([]*model.Slot, 0)
	for _, teacherID := range teacherIDs {
		if _, dup := seen[teacherID]; dup {
			continue
		}
		seen[teacherID] = struct{}{}

		for _, slot := range s.store.ListSlotsInRange(teacherID, from, to) {
			if s.isAvailable(slot) {
				result = append(result, slot)
			}
		}
	}

	availability.SortSlots(result)
	return result, nil
}

// AvailabilityCalendar свободные слоты учителей, на которых подписан студент,
// за weeks недель начиная с понедельника недели from
func (s *BookingService) AvailabilityCalendar(studentID string, from model.Date, weeks int) (*Calendar, error) {
	if weeks <= 0 {
		weeks = DefaultCalendarWeeks
	}
	if weeks > MaxCalendarWeeks {
		return nil, fmt.Errorf("%w: at most %d weeks", model.ErrValidation, MaxCalendarWeeks)
	}
	if from.IsZero() {
		from = model.DateOf(s.clock.Now())
	}

	start := from.MondayOf()
	end := start.AddDays(7*weeks - 1)

	slots, err := s.AvailableSlots(s.roster.TeachersOf(studentID), start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[model.Date][]*model.Slot)
	for _, slot := range slots {
		byDate[slot.Date] = append(byDate[slot.Date], slot)
	}

	calendar := &Calendar{From: start, To: end, Days: make([]CalendarDay, 0, 7*weeks)}
	for day := start; !day.After(end); day = day.AddDays(1) {
		daySlots := byDate[day]
		if daySlots == nil {
			daySlots = []*model.Slot{}
		}
		calendar.Days = append(calendar.Days, CalendarDay{Date: day, Available: len(daySlots), Slots: daySlots})
	}
	return calendar, nil
}

// isAvailable слот можно запросить или забронировать прямо сейчас
func (s *BookingService) isAvailable(slot *model.Slot) bool {
	if slot.IsBound() {
		return false
	}
	return !s.workflow.HasActiveRequestForSlot(slot.ID)
}
