package model

import (
	"fmt"
	"time"
)

// Subscription студент подписан на учителя и видит его свободные слоты
type Subscription struct {
	StudentID string    `json:"student_id"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Role роль пользователя в конкретной операции
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole разбирает роль; пустая строка означает студента
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}
