package formatting

import "github.com/Freeeeeet/lesson_scheduler/internal/model"

// StatusDisplay emoji и текст статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetRequestStatusDisplay возвращает emoji и текст для статуса заявки
func GetRequestStatusDisplay(status model.RequestStatus) StatusDisplay {
	displays := map[model.RequestStatus]StatusDisplay{
		model.RequestPending:  {"⏳", "Ожидает решения"},
		model.RequestAccepted: {"✅", "Принята"},
		model.RequestRejected: {"🚫", "Отклонена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

// GetSessionStatusDisplay возвращает emoji и текст для статуса занятия
func GetSessionStatusDisplay(status model.SessionStatus) StatusDisplay {
	displays := map[model.SessionStatus]StatusDisplay{
		model.SessionScheduled: {"📅", "Запланировано"},
		model.SessionCancelled: {"❌", "Отменено"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

// GetSlotStatusDisplay свободен слот или занят
func GetSlotStatusDisplay(slot *model.Slot) StatusDisplay {
	if slot.IsBound() {
		return StatusDisplay{"🔴", "Занят"}
	}
	return StatusDisplay{"🟢", "Свободен"}
}
