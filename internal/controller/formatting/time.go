package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// FormatDate форматирует дату
func FormatDate(d model.Date) string {
	return d.Time().Format("02.01.2006")
}

// FormatDateWithWeekday дата с кратким днём недели: "10.06.2024 (Пн)"
func FormatDateWithWeekday(d model.Date) string {
	return fmt.Sprintf("%s (%s)", FormatDate(d), GetWeekdayShortName(int(d.Weekday())))
}

// FormatTimeRange форматирует диапазон часов слота
func FormatTimeRange(start, end float64) string {
	return fmt.Sprintf("%s-%s", model.FormatHour(start), model.FormatHour(end))
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatDateTime форматирует момент времени
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday int) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}
