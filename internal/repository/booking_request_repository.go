package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRequestRepository struct {
	db Querier
}

func NewBookingRequestRepository(db Querier) *BookingRequestRepository {
	return &BookingRequestRepository{db: db}
}

func (r *BookingRequestRepository) WithTx(tx pgx.Tx) *BookingRequestRepository {
	return &BookingRequestRepository{db: tx}
}

// Save создаёт заявку или обновляет её статус и заметку учителя.
// Снимок слота после создания не меняется.
func (r *BookingRequestRepository) Save(ctx context.Context, request *model.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (
			id, student_id, teacher_id, slot_id, status,
			requested_date, requested_start_hour, requested_end_hour,
			student_note, teacher_note, created_at, resolved_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    teacher_note = EXCLUDED.teacher_note,
		    resolved_at = EXCLUDED.resolved_at
	`

	_, err := r.db.Exec(
		ctx, query,
		request.ID,
		request.StudentID,
		request.TeacherID,
		request.SlotID,
		request.Status,
		request.Requested.Date.Time(),
		request.Requested.StartHour,
		request.Requested.EndHour,
		request.StudentNote,
		request.TeacherNote,
		request.CreatedAt,
		request.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("save booking request: %w", err)
	}

	return nil
}

// Delete удаляет отозванную студентом заявку
func (r *BookingRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM booking_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking request: %w", err)
	}
	return nil
}

// GetAll получает все заявки
func (r *BookingRequestRepository) GetAll(ctx context.Context) ([]*model.BookingRequest, error) {
	query := `
		SELECT id, student_id, teacher_id, slot_id, status,
		       requested_date, requested_start_hour, requested_end_hour,
		       student_note, teacher_note, created_at, resolved_at
		FROM booking_requests
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get booking requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*model.BookingRequest, 0)
	for rows.Next() {
		var (
			request model.BookingRequest
			date    time.Time
		)
		err := rows.Scan(
			&request.ID,
			&request.StudentID,
			&request.TeacherID,
			&request.SlotID,
			&request.Status,
			&date,
			&request.Requested.StartHour,
			&request.Requested.EndHour,
			&request.StudentNote,
			&request.TeacherNote,
			&request.CreatedAt,
			&request.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking request: %w", err)
		}
		request.Requested.Date = model.DateOf(date)
		requests = append(requests, &request)
	}

	return requests, rows.Err()
}
