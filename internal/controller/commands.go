package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/google/uuid"
)

// ErrUsage неверные аргументы команды; текст ошибки содержит подсказку
var ErrUsage = fmt.Errorf("%w: usage", model.ErrValidation)

// ErrUnknownCommand команда не поддерживается
var ErrUnknownCommand = errors.New("unknown command")

// availableWindowDays окно /available и /slots по умолчанию
const availableWindowDays = 14

// Commands выполняет текстовые команды бота над движком бронирования.
// Не зависит от Telegram API, поэтому тестируется без сети.
type Commands struct {
	engine *service.BookingService
	state  *state.Manager
	clock  model.Clock
}

func NewCommands(engine *service.BookingService, stateManager *state.Manager, clock model.Clock) *Commands {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Commands{engine: engine, state: stateManager, clock: clock}
}

// ParseCommand разбирает "/cmd@bot arg1 arg2" в имя команды и аргументы
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), fields[1:]
}

// Execute выполняет команду от имени userID и возвращает текст ответа
func (c *Commands) Execute(userID, name string, args []string) (string, error) {
	switch name {
	case "start":
		c.state.ClearState(userID)
		return helpText, nil
	case "help":
		return helpText, nil
	case "slots":
		return c.slots(userID, args)
	case "addslot":
		return c.addSlot(userID, args)
	case "delslot":
		return c.deleteSlot(userID, args)
	case "available":
		return c.available(userID, args)
	case "book":
		return c.book(userID, args)
	case "request":
		return c.request(userID, args)
	case "incoming":
		return c.incoming(userID)
	case "myrequests":
		return c.myRequests(userID)
	case "accept":
		return c.accept(userID, args)
	case "reject":
		return c.reject(userID, args)
	case "withdraw":
		return c.withdraw(userID, args)
	case "lessons":
		return c.lessons(userID)
	case "cancellesson":
		return c.cancelLesson(userID, args)
	case "subscribe":
		return c.subscribe(userID, args)
	case "unsubscribe":
		return c.unsubscribe(userID, args)
	case "dashboard":
		return c.dashboard(userID)
	}
	return "", ErrUnknownCommand
}

// ============ Слоты ============

// /slots [дата] [учитель]: слоты учителя (по умолчанию свои) на две недели
func (c *Commands) slots(userID string, args []string) (string, error) {
	if len(args) > 2 {
		return "", usage("/slots [YYYY-MM-DD] [учитель]")
	}

	from := model.DateOf(c.clock.Now())
	if len(args) >= 1 {
		d, err := model.ParseDate(args[0])
		if err != nil {
			return "", err
		}
		from = d
	}
	teacherID := userID
	if len(args) == 2 {
		teacherID = args[1]
	}

	slots, err := c.engine.ListSlots(teacherID, from, from.AddDays(availableWindowDays-1))
	if err != nil {
		return "", err
	}
	c.state.Remember(userID, state.ListSlots, slotIDs(slots))

	if len(slots) == 0 {
		return "📭 Слотов на этот период нет.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 %d %s с %s:\n\n", len(slots), formatting.PluralizeSlots(len(slots)), formatting.FormatDate(from))
	for i, slot := range slots {
		sb.WriteString(formatting.FormatSlotShort(slot, i+1))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// /addslot YYYY-MM-DD HH:MM HH:MM
func (c *Commands) addSlot(userID string, args []string) (string, error) {
	if len(args) != 3 {
		return "", usage("/addslot YYYY-MM-DD HH:MM HH:MM")
	}

	date, err := model.ParseDate(args[0])
	if err != nil {
		return "", err
	}
	start, err := model.ParseHour(args[1])
	if err != nil {
		return "", err
	}
	end, err := model.ParseHour(args[2])
	if err != nil {
		return "", err
	}

	slot, err := c.engine.CreateSlot(userID, date, start, end)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Слот создан: %s %s (%s)",
		formatting.FormatDateWithWeekday(slot.Date),
		formatting.FormatTimeRange(slot.StartHour, slot.EndHour),
		formatting.FormatDuration(int(slot.Duration()*60)),
	), nil
}

// /delslot <id|номер>
func (c *Commands) deleteSlot(userID string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/delslot <id или номер из /slots>")
	}

	id, err := c.state.Resolve(userID, state.ListSlots, args[0])
	if err != nil {
		return "", err
	}
	if err := c.engine.DeleteSlot(userID, id); err != nil {
		return "", err
	}
	return "🗑 Слот удалён.", nil
}

// /available [дата]: свободные слоты учителей, на которых подписан пользователь
func (c *Commands) available(userID string, args []string) (string, error) {
	from := model.DateOf(c.clock.Now())
	if len(args) == 1 {
		d, err := model.ParseDate(args[0])
		if err != nil {
			return "", err
		}
		from = d
	} else if len(args) > 1 {
		return "", usage("/available [YYYY-MM-DD]")
	}

	teachers := c.engine.TeachersOf(userID)
	if len(teachers) == 0 {
		return "👥 Вы ещё не подписаны ни на одного учителя.\n\nПодписаться: /subscribe <учитель>", nil
	}

	slots, err := c.engine.AvailableSlots(teachers, from, from.AddDays(availableWindowDays-1))
	if err != nil {
		return "", err
	}
	c.state.Remember(userID, state.ListSlots, slotIDs(slots))

	if len(slots) == 0 {
		return "📭 Свободных слотов нет.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🟢 Свободно %d %s:\n\n", len(slots), formatting.PluralizeSlots(len(slots)))
	for i, slot := range slots {
		sb.WriteString(formatting.FormatSlotShort(slot, i+1))
		sb.WriteString("\n")
	}
	sb.WriteString("\nЗаявка: /request <номер> [комментарий]")
	return sb.String(), nil
}

// ============ Бронирование ============

// /book <номер|id>: прямое бронирование
func (c *Commands) book(userID string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/book <id или номер из /available>")
	}

	slot, err := c.resolveSlot(userID, args[0])
	if err != nil {
		return "", err
	}

	if _, err := c.engine.BookDirect(userID, slot.TeacherID, slot.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Вы записаны на %s %s.",
		formatting.FormatDateWithWeekday(slot.Date),
		formatting.FormatTimeRange(slot.StartHour, slot.EndHour),
	), nil
}

// /request <номер|id> [комментарий]
func (c *Commands) request(userID string, args []string) (string, error) {
	if len(args) < 1 {
		return "", usage("/request <id или номер из /available> [комментарий]")
	}

	slot, err := c.resolveSlot(userID, args[0])
	if err != nil {
		return "", err
	}

	request, err := c.engine.CreateBookingRequest(userID, slot.TeacherID, slot.ID, strings.Join(args[1:], " "))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📨 Заявка отправлена учителю (%s).\n\n%s %s",
		formatting.FormatDateTime(request.CreatedAt),
		formatting.FormatDateWithWeekday(request.Requested.Date),
		formatting.FormatTimeRange(request.Requested.StartHour, request.Requested.EndHour),
	), nil
}

// /incoming: заявки к пользователю как к учителю
func (c *Commands) incoming(userID string) (string, error) {
	requests := c.engine.ListRequestsForTeacher(userID, nil)
	return c.requestList(userID, requests, "📥 Входящие заявки", "📭 Входящих заявок нет."), nil
}

// /myrequests: заявки пользователя как студента
func (c *Commands) myRequests(userID string) (string, error) {
	requests := c.engine.ListRequestsForStudent(userID, nil)
	return c.requestList(userID, requests, "📤 Мои заявки", "📭 У вас нет заявок."), nil
}

// /accept <номер|id> [комментарий]
func (c *Commands) accept(userID string, args []string) (string, error) {
	if len(args) < 1 {
		return "", usage("/accept <id или номер из /incoming> [комментарий]")
	}

	id, err := c.state.Resolve(userID, state.ListRequests, args[0])
	if err != nil {
		return "", err
	}
	if _, err := c.engine.AcceptRequest(userID, id, strings.Join(args[1:], " ")); err != nil {
		return "", err
	}
	return "✅ Заявка принята, занятие запланировано.", nil
}

// /reject <номер|id> [комментарий]
func (c *Commands) reject(userID string, args []string) (string, error) {
	if len(args) < 1 {
		return "", usage("/reject <id или номер из /incoming> [комментарий]")
	}

	id, err := c.state.Resolve(userID, state.ListRequests, args[0])
	if err != nil {
		return "", err
	}
	if err := c.engine.RejectRequest(userID, id, strings.Join(args[1:], " ")); err != nil {
		return "", err
	}
	return "🚫 Заявка отклонена.", nil
}

// /withdraw <номер|id>
func (c *Commands) withdraw(userID string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/withdraw <id или номер из /myrequests>")
	}

	id, err := c.state.Resolve(userID, state.ListRequests, args[0])
	if err != nil {
		return "", err
	}
	if err := c.engine.CancelRequest(userID, id); err != nil {
		return "", err
	}
	return "↩️ Заявка отозвана.", nil
}

// ============ Занятия ============

// /lessons: предстоящие занятия в обеих ролях
func (c *Commands) lessons(userID string) (string, error) {
	lessons := append(
		c.engine.UpcomingLessons(userID, model.RoleStudent),
		c.engine.UpcomingLessons(userID, model.RoleTeacher)...,
	)

	ids := make([]uuid.UUID, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.Session.ID)
	}
	c.state.Remember(userID, state.ListLessons, ids)

	if len(lessons) == 0 {
		return "📭 Предстоящих занятий нет.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 %d %s:\n\n", len(lessons), formatting.PluralizeLessons(len(lessons)))
	for i, lesson := range lessons {
		sb.WriteString(formatting.FormatLessonShort(lesson.Session, lesson.Slot, i+1))
		sb.WriteString("\n")
	}
	sb.WriteString("\nОтменить: /cancellesson <номер>")
	return sb.String(), nil
}

// /cancellesson <номер|id>
func (c *Commands) cancelLesson(userID string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/cancellesson <id или номер из /lessons>")
	}

	id, err := c.state.Resolve(userID, state.ListLessons, args[0])
	if err != nil {
		return "", err
	}
	if err := c.engine.CancelSession(userID, id); err != nil {
		return "", err
	}
	return "❌ Занятие отменено, слот снова свободен.", nil
}

// ============ Подписки ============

func (c *Commands) subscribe(userID string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/subscribe <учитель>")
	}
	if err := c.engine.Subscribe(userID, args[0]); err != nil {
		return "", err
	}
	return fmt.Sprintf("👥 Вы подписаны на учителя %s.\n\nСвободные слоты: /available", args[0]), nil
}

func (c *Commands) unsubscribe(userID string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/unsubscribe <учитель>")
	}
	if err := c.engine.Unsubscribe(userID, args[0]); err != nil {
		return "", err
	}
	return fmt.Sprintf("👋 Вы отписались от учителя %s.", args[0]), nil
}

// /dashboard: сводка
func (c *Commands) dashboard(userID string) (string, error) {
	d := c.engine.Dashboard(userID)
	return fmt.Sprintf(
		"📊 Сводка\n\n"+
			"Как студент: %d %s, %d %s на рассмотрении\n"+
			"Как учитель: %d %s, %d %s ждут решения, %d %s",
		d.UpcomingAsStudent, formatting.PluralizeLessons(d.UpcomingAsStudent),
		d.PendingOutgoing, formatting.PluralizeRequests(d.PendingOutgoing),
		d.UpcomingAsTeacher, formatting.PluralizeLessons(d.UpcomingAsTeacher),
		d.PendingIncoming, formatting.PluralizeRequests(d.PendingIncoming),
		d.Students, formatting.PluralizeStudents(d.Students),
	), nil
}

// ============ Вспомогательные ============

func (c *Commands) resolveSlot(userID, ref string) (*model.Slot, error) {
	id, err := c.state.Resolve(userID, state.ListSlots, ref)
	if err != nil {
		return nil, err
	}
	return c.engine.FindSlot(id)
}

func (c *Commands) requestList(userID string, requests []*model.BookingRequest, title, empty string) string {
	ids := make([]uuid.UUID, 0, len(requests))
	for _, request := range requests {
		ids = append(ids, request.ID)
	}
	c.state.Remember(userID, state.ListRequests, ids)

	if len(requests) == 0 {
		return empty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):\n\n", title, len(requests))
	for i, request := range requests {
		sb.WriteString(formatting.FormatRequestShort(request, i+1))
		sb.WriteString("\n")
	}
	return sb.String()
}

func slotIDs(slots []*model.Slot) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	return ids
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", ErrUsage, text)
}

// ReplyForError текст ответа пользователю на ошибку команды
func ReplyForError(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return "❓ Неизвестная команда. Список команд: /help"
	case errors.Is(err, ErrUsage):
		return "ℹ️ Использование: " + strings.TrimPrefix(err.Error(), ErrUsage.Error()+": ")
	case errors.Is(err, model.ErrSlotNotFound):
		return "❌ Слот не найден."
	case errors.Is(err, model.ErrRequestNotFound):
		return "❌ Заявка не найдена."
	case errors.Is(err, model.ErrSessionNotFound):
		return "❌ Занятие не найдено."
	case errors.Is(err, model.ErrNotFound):
		return "❌ Не найдено."
	case errors.Is(err, model.ErrValidation):
		return "⚠️ Некорректные данные: " + err.Error()
	case errors.Is(err, model.ErrConflict):
		return "⚠️ Слот пересекается с существующим: " + err.Error()
	case errors.Is(err, model.ErrSlotNoLongerAvailable):
		return "⚠️ Слот больше недоступен, заявка автоматически отклонена."
	case errors.Is(err, model.ErrSlotUnavailable):
		return "⚠️ Слот уже занят или на него есть активная заявка."
	case errors.Is(err, model.ErrNotPending):
		return "⚠️ Заявка уже рассмотрена."
	case errors.Is(err, model.ErrAlreadyCancelled):
		return "⚠️ Занятие уже отменено."
	case errors.Is(err, model.ErrSlotBound):
		return "⚠️ Нельзя удалить слот, на который записан студент."
	}
	return "❌ Произошла ошибка. Попробуйте позже."
}

const helpText = "📚 Справка по командам:\n\n" +
	"Для студентов:\n" +
	"/subscribe <учитель> - Подписаться на учителя\n" +
	"/unsubscribe <учитель> - Отписаться\n" +
	"/available [дата] - Свободные слоты моих учителей\n" +
	"/request <номер> [комментарий] - Отправить заявку\n" +
	"/book <номер> - Записаться без заявки\n" +
	"/myrequests - Мои заявки\n" +
	"/withdraw <номер> - Отозвать заявку\n\n" +
	"Для учителей:\n" +
	"/addslot <дата> <начало> <конец> - Добавить слот (2024-06-10 09:00 10:00)\n" +
	"/slots [дата] [учитель] - Слоты на две недели\n" +
	"/delslot <номер> - Удалить свободный слот\n" +
	"/incoming - Входящие заявки\n" +
	"/accept <номер> [комментарий] - Принять заявку\n" +
	"/reject <номер> [комментарий] - Отклонить заявку\n\n" +
	"Общие:\n" +
	"/lessons - Предстоящие занятия\n" +
	"/cancellesson <номер> - Отменить занятие\n" +
	"/dashboard - Сводка\n" +
	"/help - Показать эту справку"
