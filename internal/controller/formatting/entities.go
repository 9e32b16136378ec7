package formatting

import (
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// FormatSlotShort строка списка слотов
func FormatSlotShort(slot *model.Slot, index int) string {
	display := GetSlotStatusDisplay(slot)
	return fmt.Sprintf("%d. %s %s %s (учитель %s)",
		index,
		display.Emoji,
		FormatDateWithWeekday(slot.Date),
		FormatTimeRange(slot.StartHour, slot.EndHour),
		slot.TeacherID,
	)
}

// FormatRequestShort строка списка заявок; время берётся из снимка на момент создания
func FormatRequestShort(request *model.BookingRequest, index int) string {
	display := GetRequestStatusDisplay(request.Status)
	line := fmt.Sprintf("%d. %s %s %s, студент %s, учитель %s",
		index,
		display.Emoji,
		FormatDateWithWeekday(request.Requested.Date),
		FormatTimeRange(request.Requested.StartHour, request.Requested.EndHour),
		request.StudentID,
		request.TeacherID,
	)
	if request.StudentNote != "" {
		line += fmt.Sprintf("\n   💬 %s", request.StudentNote)
	}
	if request.TeacherNote != "" {
		line += fmt.Sprintf("\n   📝 %s", request.TeacherNote)
	}
	return line
}

// FormatLessonShort строка списка занятий
func FormatLessonShort(session *model.Session, slot *model.Slot, index int) string {
	display := GetSessionStatusDisplay(session.Status)
	return fmt.Sprintf("%d. %s %s %s, студент %s, учитель %s",
		index,
		display.Emoji,
		FormatDateWithWeekday(slot.Date),
		FormatTimeRange(slot.StartHour, slot.EndHour),
		session.StudentID,
		session.TeacherID,
	)
}
