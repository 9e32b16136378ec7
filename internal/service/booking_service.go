package service

import (
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/availability"
	"github.com/Freeeeeet/lesson_scheduler/internal/ledger"
	"github.com/Freeeeeet/lesson_scheduler/internal/metrics"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService движок бронирования: слоты, заявки, занятия и подписки.
// Все операции синхронные и выполняются целиком в памяти; изменения
// передаются в recorder для последующего сохранения.
type BookingService struct {
	store    *availability.Store
	ledger   *ledger.Ledger
	workflow *workflow.Workflow
	roster   *Roster
	recorder model.Recorder
	clock    model.Clock
	logger   *zap.Logger
}

func NewBookingService(recorder model.Recorder, clock model.Clock, logger *zap.Logger) *BookingService {
	if recorder == nil {
		recorder = model.NopRecorder{}
	}
	if clock == nil {
		clock = model.SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := availability.NewStore(recorder, clock)
	l := ledger.NewLedger(store, recorder, clock)

	return &BookingService{
		store:    store,
		ledger:   l,
		workflow: workflow.NewWorkflow(store, l, recorder, clock),
		roster:   NewRoster(recorder, clock),
		recorder: recorder,
		clock:    clock,
		logger:   logger,
	}
}

// ============ Слоты ============

// CreateSlot создаёт слот доступности учителя
func (s *BookingService) CreateSlot(teacherID string, date model.Date, start, end float64) (*model.Slot, error) {
	slot, err := s.store.CreateSlot(teacherID, date, start, end)
	s.observe("create_slot", err, zap.String("teacher_id", teacherID), zap.Stringer("date", date))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("teacher_id", teacherID),
		zap.Stringer("date", date),
		zap.String("start", model.FormatHour(start)),
		zap.String("end", model.FormatHour(end)),
	)
	return slot, nil
}

// DeleteSlot удаляет свободный слот учителя
func (s *BookingService) DeleteSlot(teacherID string, slotID uuid.UUID) error {
	err := s.store.DeleteSlot(teacherID, slotID)
	s.observe("delete_slot", err, zap.String("teacher_id", teacherID), zap.String("slot_id", slotID.String()))
	if err != nil {
		return err
	}

	s.logger.Info("Slot deleted", zap.String("slot_id", slotID.String()), zap.String("teacher_id", teacherID))
	return nil
}

// ListSlots слоты учителя за период включительно
func (s *BookingService) ListSlots(teacherID string, from, to model.Date) ([]*model.Slot, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.store.ListSlotsInRange(teacherID, from, to), nil
}

// FindSlot ищет слот по ID
func (s *BookingService) FindSlot(slotID uuid.UUID) (*model.Slot, error) {
	slot, ok := s.store.FindSlot(slotID)
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	return slot, nil
}

// ============ Бронирование ============

// BookDirect бронирует слот без заявки. Слот должен быть свободен и не иметь
// активной заявки.
func (s *BookingService) BookDirect(studentID, teacherID string, slotID uuid.UUID) (*model.Session, error) {
	session, err := s.bookDirect(studentID, teacherID, slotID)
	s.observe("book_direct", err,
		zap.String("student_id", studentID),
		zap.String("teacher_id", teacherID),
		zap.String("slot_id", slotID.String()),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slot booked directly",
		zap.String("session_id", session.ID.String()),
		zap.String("student_id", studentID),
		zap.String("slot_id", slotID.String()),
	)
	return session, nil
}

func (s *BookingService) bookDirect(studentID, teacherID string, slotID uuid.UUID) (*model.Session, error) {
	if err := model.ValidateID("student id", studentID); err != nil {
		return nil, err
	}

	var session *model.Session
	err := s.store.Update(teacherID, func(tx *availability.Tx) error {
		slot, ok := tx.Slot(slotID)
		if !ok || slot.IsBound() {
			return model.ErrSlotUnavailable
		}
		if s.workflow.HasActiveRequestInTx(tx, slotID) {
			return fmt.Errorf("%w: slot has an active booking request", model.ErrSlotUnavailable)
		}

		var err error
		session, err = s.ledger.BookInTx(tx, studentID, slotID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateBookingRequest создаёт заявку студента на слот
func (s *BookingService) CreateBookingRequest(studentID, teacherID string, slotID uuid.UUID, note string) (*model.BookingRequest, error) {
	request, err := s.workflow.CreateRequest(studentID, teacherID, slotID, note)
	s.observe("create_request", err,
		zap.String("student_id", studentID),
		zap.String("teacher_id", teacherID),
		zap.String("slot_id", slotID.String()),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking request created",
		zap.String("request_id", request.ID.String()),
		zap.String("student_id", studentID),
		zap.String("slot_id", slotID.String()),
	)
	return request, nil
}

// AcceptRequest принимает заявку учителем и возвращает созданное занятие
func (s *BookingService) AcceptRequest(teacherID string, requestID uuid.UUID, note string) (*model.Session, error) {
	session, err := s.workflow.Accept(teacherID, requestID, note)
	s.observe("accept_request", err, zap.String("teacher_id", teacherID), zap.String("request_id", requestID.String()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking request accepted",
		zap.String("request_id", requestID.String()),
		zap.String("session_id", session.ID.String()),
	)
	return session, nil
}

// RejectRequest отклоняет заявку
func (s *BookingService) RejectRequest(teacherID string, requestID uuid.UUID, note string) error {
	err := s.workflow.Reject(teacherID, requestID, note)
	s.observe("reject_request", err, zap.String("teacher_id", teacherID), zap.String("request_id", requestID.String()))
	if err != nil {
		return err
	}

	s.logger.Info("Booking request rejected", zap.String("request_id", requestID.String()))
	return nil
}

// CancelRequest отзывает ожидающую заявку студентом
func (s *BookingService) CancelRequest(studentID string, requestID uuid.UUID) error {
	err := s.workflow.CancelByStudent(studentID, requestID)
	s.observe("cancel_request", err, zap.String("student_id", studentID), zap.String("request_id", requestID.String()))
	if err != nil {
		return err
	}

	s.logger.Info("Booking request withdrawn", zap.String("request_id", requestID.String()))
	return nil
}

// CancelSession отменяет занятие. Отменить может только его студент или учитель.
func (s *BookingService) CancelSession(callerID string, sessionID uuid.UUID) error {
	err := s.cancelSession(callerID, sessionID)
	s.observe("cancel_session", err, zap.String("caller_id", callerID), zap.String("session_id", sessionID.String()))
	if err != nil {
		return err
	}

	s.logger.Info("Session cancelled", zap.String("session_id", sessionID.String()), zap.String("caller_id", callerID))
	return nil
}

func (s *BookingService) cancelSession(callerID string, sessionID uuid.UUID) error {
	session, ok := s.ledger.Get(sessionID)
	if !ok || !session.Involves(callerID) {
		return model.ErrSessionNotFound
	}
	return s.ledger.Cancel(sessionID)
}

// ============ Запросы ============

// GetRequest заявка, видимая только её студенту и учителю
func (s *BookingService) GetRequest(callerID string, requestID uuid.UUID) (*model.BookingRequest, error) {
	request, ok := s.workflow.Get(requestID)
	if !ok || (request.StudentID != callerID && request.TeacherID != callerID) {
		return nil, model.ErrRequestNotFound
	}
	return request, nil
}

// GetSession занятие, видимое только его участникам
func (s *BookingService) GetSession(callerID string, sessionID uuid.UUID) (*model.Session, error) {
	session, ok := s.ledger.Get(sessionID)
	if !ok || !session.Involves(callerID) {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *BookingService) ListRequestsForTeacher(teacherID string, status *model.RequestStatus) []*model.BookingRequest {
	return s.workflow.ListForTeacher(teacherID, status)
}

func (s *BookingService) ListRequestsForStudent(studentID string, status *model.RequestStatus) []*model.BookingRequest {
	return s.workflow.ListForStudent(studentID, status)
}

// ListSessionsForTeacher занятия учителя; отменённые только при includeCancelled
func (s *BookingService) ListSessionsForTeacher(teacherID string, includeCancelled bool) []*model.Session {
	return s.ledger.ForTeacher(teacherID, ledger.WithCancelled(includeCancelled))
}

// ListSessionsForStudent занятия студента; отменённые только при includeCancelled
func (s *BookingService) ListSessionsForStudent(studentID string, includeCancelled bool) []*model.Session {
	return s.ledger.ForStudent(studentID, ledger.WithCancelled(includeCancelled))
}

// ============ Подписки ============

// Subscribe подписывает студента на учителя
func (s *BookingService) Subscribe(studentID, teacherID string) error {
	err := s.roster.Subscribe(studentID, teacherID)
	s.observe("subscribe", err, zap.String("student_id", studentID), zap.String("teacher_id", teacherID))
	if err != nil {
		return err
	}

	s.logger.Info("Student subscribed", zap.String("student_id", studentID), zap.String("teacher_id", teacherID))
	return nil
}

// Unsubscribe отписывает студента от учителя
func (s *BookingService) Unsubscribe(studentID, teacherID string) error {
	err := s.roster.Unsubscribe(studentID, teacherID)
	s.observe("unsubscribe", err, zap.String("student_id", studentID), zap.String("teacher_id", teacherID))
	if err != nil {
		return err
	}

	s.logger.Info("Student unsubscribed", zap.String("student_id", studentID), zap.String("teacher_id", teacherID))
	return nil
}

func (s *BookingService) TeachersOf(studentID string) []string {
	return s.roster.TeachersOf(studentID)
}

func (s *BookingService) StudentsOf(teacherID string) []string {
	return s.roster.StudentsOf(teacherID)
}

// observe учитывает результат операции в метриках и логирует отказ
func (s *BookingService) observe(operation string, err error, fields ...zap.Field) {
	metrics.ObserveOperation(operation, err)
	if err == nil {
		return
	}

	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	s.logger.Warn("Operation refused", fields...)
}

func validateRange(from, to model.Date) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: date range is required", model.ErrValidation)
	}
	if from.After(to) {
		return fmt.Errorf("%w: range start %s is after end %s", model.ErrValidation, from, to)
	}
	return nil
}
