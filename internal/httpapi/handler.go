package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler обработчики /v1; ID вызывающего берётся из RequireUser
type Handler struct {
	engine *service.BookingService
	logger *zap.Logger
}

type createSlotBody struct {
	Date      model.Date `json:"date"`
	StartHour float64    `json:"start_hour"`
	EndHour   float64    `json:"end_hour"`
}

type bookBody struct {
	TeacherID string `json:"teacher_id"`
}

type createRequestBody struct {
	TeacherID string    `json:"teacher_id"`
	SlotID    uuid.UUID `json:"slot_id"`
	Note      string    `json:"note"`
}

type noteBody struct {
	Note string `json:"note"`
}

// CreateSlot POST /v1/slots, учитель берётся из X-User-ID
func (h *Handler) CreateSlot(c echo.Context) error {
	var body createSlotBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	slot, err := h.engine.CreateSlot(userID(c), body.Date, body.StartHour, body.EndHour)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, slot)
}

// DeleteSlot DELETE /v1/slots/:id
func (h *Handler) DeleteSlot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.engine.DeleteSlot(userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSlots GET /v1/teachers/:id/slots?from&to
func (h *Handler) ListSlots(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return h.fail(c, err)
	}

	slots, err := h.engine.ListSlots(c.Param("id"), from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

// AvailableSlots GET /v1/availability?teacher_id=..&from&to;
// без teacher_id берутся учителя, на которых подписан вызывающий
func (h *Handler) AvailableSlots(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return h.fail(c, err)
	}

	teacherIDs := c.QueryParams()["teacher_id"]
	if len(teacherIDs) == 0 {
		teacherIDs = h.engine.TeachersOf(userID(c))
	}

	slots, err := h.engine.AvailableSlots(teacherIDs, from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

// BookDirect POST /v1/slots/:id/book, студент берётся из X-User-ID
func (h *Handler) BookDirect(c echo.Context) error {
	slotID, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body bookBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	teacherID := body.TeacherID
	if teacherID == "" {
		slot, err := h.engine.FindSlot(slotID)
		if err != nil {
			return h.fail(c, model.ErrSlotUnavailable)
		}
		teacherID = slot.TeacherID
	}

	session, err := h.engine.BookDirect(userID(c), teacherID, slotID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// CreateRequest POST /v1/requests, студент берётся из X-User-ID
func (h *Handler) CreateRequest(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.SlotID == uuid.Nil {
		return badRequest(c, "slot_id is required")
	}

	teacherID := body.TeacherID
	if teacherID == "" {
		slot, err := h.engine.FindSlot(body.SlotID)
		if err != nil {
			return h.fail(c, err)
		}
		teacherID = slot.TeacherID
	}

	request, err := h.engine.CreateBookingRequest(userID(c), teacherID, body.SlotID, body.Note)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, request)
}

// GetRequest GET /v1/requests/:id
func (h *Handler) GetRequest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}

	request, err := h.engine.GetRequest(userID(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, request)
}

// AcceptRequest POST /v1/requests/:id/accept
func (h *Handler) AcceptRequest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body noteBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := h.engine.AcceptRequest(userID(c), id, body.Note)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// RejectRequest POST /v1/requests/:id/reject
func (h *Handler) RejectRequest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body noteBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.engine.RejectRequest(userID(c), id, body.Note); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelRequest DELETE /v1/requests/:id
func (h *Handler) CancelRequest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.engine.CancelRequest(userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSession GET /v1/sessions/:id
func (h *Handler) GetSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}

	session, err := h.engine.GetSession(userID(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// CancelSession POST /v1/sessions/:id/cancel
func (h *Handler) CancelSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.engine.CancelSession(userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyRequests GET /v1/me/requests?status
func (h *Handler) ListMyRequests(c echo.Context) error {
	status, err := model.ParseRequestStatus(c.QueryParam("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.engine.ListRequestsForStudent(userID(c), status))
}

// ListIncomingRequests GET /v1/me/requests/incoming?status
func (h *Handler) ListIncomingRequests(c echo.Context) error {
	status, err := model.ParseRequestStatus(c.QueryParam("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.engine.ListRequestsForTeacher(userID(c), status))
}

// ListMySessions GET /v1/me/sessions?role&include_cancelled
func (h *Handler) ListMySessions(c echo.Context) error {
	role, err := model.ParseRole(c.QueryParam("role"))
	if err != nil {
		return h.fail(c, err)
	}

	includeCancelled := false
	if raw := c.QueryParam("include_cancelled"); raw != "" {
		includeCancelled, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid include_cancelled")
		}
	}

	if role == model.RoleTeacher {
		return c.JSON(http.StatusOK, h.engine.ListSessionsForTeacher(userID(c), includeCancelled))
	}
	return c.JSON(http.StatusOK, h.engine.ListSessionsForStudent(userID(c), includeCancelled))
}

// UpcomingLessons GET /v1/me/lessons?role
func (h *Handler) UpcomingLessons(c echo.Context) error {
	role, err := model.ParseRole(c.QueryParam("role"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.engine.UpcomingLessons(userID(c), role))
}

// Dashboard GET /v1/me/dashboard
func (h *Handler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Dashboard(userID(c)))
}

// Calendar GET /v1/me/calendar?from&weeks
func (h *Handler) Calendar(c echo.Context) error {
	var (
		from  model.Date
		weeks int
		err   error
	)
	if raw := c.QueryParam("from"); raw != "" {
		if from, err = model.ParseDate(raw); err != nil {
			return h.fail(c, err)
		}
	}
	if raw := c.QueryParam("weeks"); raw != "" {
		if weeks, err = strconv.Atoi(raw); err != nil {
			return badRequest(c, "invalid weeks")
		}
	}

	calendar, err := h.engine.AvailabilityCalendar(userID(c), from, weeks)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, calendar)
}

// ListTeachers GET /v1/me/teachers
func (h *Handler) ListTeachers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.TeachersOf(userID(c)))
}

// ListStudents GET /v1/me/students
func (h *Handler) ListStudents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.StudentsOf(userID(c)))
}

// Subscribe POST /v1/me/teachers/:id
func (h *Handler) Subscribe(c echo.Context) error {
	if err := h.engine.Subscribe(userID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Unsubscribe DELETE /v1/me/teachers/:id
func (h *Handler) Unsubscribe(c echo.Context) error {
	if err := h.engine.Unsubscribe(userID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", model.ErrValidation, c.Param("id"))
	}
	return id, nil
}

func dateRange(c echo.Context) (model.Date, model.Date, error) {
	from, err := model.ParseDate(c.QueryParam("from"))
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	to, err := model.ParseDate(c.QueryParam("to"))
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	return from, to, nil
}
