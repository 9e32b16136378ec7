package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Границы и шаг смещений слота в часах
const (
	MinHour         = 0.0
	MaxHour         = 24.0
	HourGranularity = 0.25 // 15 минут
)

// IsValidHour проверяет что значение в [0, 24] и кратно 15 минутам
func IsValidHour(h float64) bool {
	if math.IsNaN(h) || h < MinHour || h > MaxHour {
		return false
	}
	steps := h / HourGranularity
	return steps == math.Trunc(steps)
}

// FormatHour форматирует дробный час как HH:MM (9.25 -> 09:15)
func FormatHour(h float64) string {
	hour := int(math.Floor(h))
	minutes := int(math.Round((h - float64(hour)) * 60))
	return fmt.Sprintf("%02d:%02d", hour, minutes)
}

// ParseHour принимает HH:MM или дробное число часов
func ParseHour(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if hh, mm, ok := strings.Cut(s, ":"); ok {
		hour, err := strconv.Atoi(hh)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid hour %q", ErrValidation, s)
		}
		minute, err := strconv.Atoi(mm)
		if err != nil || minute < 0 || minute >= 60 {
			return 0, fmt.Errorf("%w: invalid minutes %q", ErrValidation, s)
		}
		return float64(hour) + float64(minute)/60, nil
	}

	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hour %q", ErrValidation, s)
	}
	return h, nil
}
