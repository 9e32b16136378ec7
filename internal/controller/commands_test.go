package controller

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommands(t *testing.T) (*Commands, *service.BookingService) {
	t.Helper()
	clock := model.ClockFunc(func() time.Time { return time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC) })
	engine := service.NewBookingService(nil, clock, nil)
	return NewCommands(engine, state.NewManager(), clock), engine
}

func run(t *testing.T, c *Commands, userID, text string) (string, error) {
	t.Helper()
	name, args := ParseCommand(text)
	return c.Execute(userID, name, args)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		args []string
	}{
		{"/help", "help", []string{}},
		{"/Accept@lesson_bot 2 see you", "accept", []string{"2", "see", "you"}},
		{"  /slots   2024-06-10 ", "slots", []string{"2024-06-10"}},
		{"hello", "", nil},
		{"", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args := ParseCommand(tt.text)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestRequestFlowByListNumbers(t *testing.T) {
	c, engine := newCommands(t)

	reply, err := run(t, c, "100", "/addslot 2024-06-10 09:00 10:00")
	require.NoError(t, err)
	assert.Contains(t, reply, "10.06.2024 (Пн)")
	assert.Contains(t, reply, "09:00-10:00")
	assert.Contains(t, reply, "1 ч")

	_, err = run(t, c, "100", "/addslot 2024-06-10 09:30 10:30")
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = run(t, c, "200", "/subscribe 100")
	require.NoError(t, err)

	reply, err = run(t, c, "200", "/available")
	require.NoError(t, err)
	assert.Contains(t, reply, "1. 🟢")

	reply, err = run(t, c, "200", "/request 1 первое занятие")
	require.NoError(t, err)
	assert.Contains(t, reply, "Заявка отправлена")

	pending := engine.ListRequestsForStudent("200", nil)
	require.Len(t, pending, 1)
	assert.Equal(t, "первое занятие", pending[0].StudentNote)

	reply, err = run(t, c, "100", "/incoming")
	require.NoError(t, err)
	assert.Contains(t, reply, "⏳")

	_, err = run(t, c, "100", "/accept #1 до встречи")
	require.NoError(t, err)

	reply, err = run(t, c, "200", "/lessons")
	require.NoError(t, err)
	assert.Contains(t, reply, "1 занятие")

	_, err = run(t, c, "200", "/cancellesson 1")
	require.NoError(t, err)

	_, err = run(t, c, "200", "/cancellesson 1")
	assert.ErrorIs(t, err, model.ErrAlreadyCancelled)
}

func TestBookAndDeleteSlot(t *testing.T) {
	c, _ := newCommands(t)

	_, err := run(t, c, "100", "/addslot 2024-06-11 14:00 15:30")
	require.NoError(t, err)

	reply, err := run(t, c, "200", "/slots 2024-06-10 100")
	require.NoError(t, err)
	assert.Contains(t, reply, "1 слот")

	_, err = run(t, c, "200", "/book 1")
	require.NoError(t, err)

	_, err = run(t, c, "300", "/slots 2024-06-10 100")
	require.NoError(t, err)
	_, err = run(t, c, "300", "/book 1")
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	reply, err = run(t, c, "100", "/slots")
	require.NoError(t, err)
	assert.Contains(t, reply, "🔴")

	_, err = run(t, c, "100", "/delslot 1")
	assert.ErrorIs(t, err, model.ErrSlotBound)
}

func TestWithdraw(t *testing.T) {
	c, engine := newCommands(t)

	slot, err := engine.CreateSlot("100", model.NewDate(2024, time.June, 12), 9, 10)
	require.NoError(t, err)

	_, err = run(t, c, "200", "/request "+slot.ID.String())
	require.NoError(t, err)

	_, err = run(t, c, "200", "/myrequests")
	require.NoError(t, err)
	_, err = run(t, c, "200", "/withdraw 1")
	require.NoError(t, err)

	reply, err := run(t, c, "200", "/myrequests")
	require.NoError(t, err)
	assert.Equal(t, "📭 У вас нет заявок.", reply)
}

func TestCommandErrors(t *testing.T) {
	c, _ := newCommands(t)

	tests := []struct {
		text string
		want string
	}{
		{"/unknown", "Неизвестная команда"},
		{"/addslot 2024-06-10", "Использование: /addslot"},
		{"/addslot 10.06.2024 09:00 10:00", "Некорректные данные"},
		{"/accept 3", "Некорректные данные"},
		{"/withdraw abc", "Некорректные данные"},
		{"/unsubscribe 100", "Не найдено"},
		{"/subscribe", "Использование: /subscribe"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := run(t, c, "200", tt.text)
			require.Error(t, err)
			assert.Contains(t, ReplyForError(err), tt.want)
		})
	}
}

func TestReplyForError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{model.ErrSlotNotFound, "Слот не найден"},
		{model.ErrRequestNotFound, "Заявка не найдена"},
		{model.ErrSlotNoLongerAvailable, "автоматически отклонена"},
		{model.ErrSlotUnavailable, "уже занят"},
		{model.ErrNotPending, "уже рассмотрена"},
		{fmt.Errorf("wrap: %w", model.ErrAlreadyCancelled), "уже отменено"},
		{fmt.Errorf("boom"), "Попробуйте позже"},
	}

	for _, tt := range tests {
		assert.True(t, strings.Contains(ReplyForError(tt.err), tt.want), tt.err.Error())
	}
}

func TestStartAndDashboard(t *testing.T) {
	c, _ := newCommands(t)

	reply, err := run(t, c, "200", "/start")
	require.NoError(t, err)
	assert.Contains(t, reply, "/subscribe")

	reply, err = run(t, c, "200", "/dashboard")
	require.NoError(t, err)
	assert.Contains(t, reply, "0 занятий")
	assert.Contains(t, reply, "0 студентов")
}
