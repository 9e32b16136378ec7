package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/jackc/pgx/v5"
)

type SessionRepository struct {
	db Querier
}

func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) WithTx(tx pgx.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

// Save создаёт занятие или сохраняет его отмену
func (r *SessionRepository) Save(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, student_id, teacher_id, slot_id, status, booking_request_id, created_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    cancelled_at = EXCLUDED.cancelled_at
	`

	_, err := r.db.Exec(
		ctx, query,
		session.ID,
		session.StudentID,
		session.TeacherID,
		session.SlotID,
		session.Status,
		session.BookingRequestID,
		session.CreatedAt,
		session.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// GetAll получает все занятия, включая отменённые
func (r *SessionRepository) GetAll(ctx context.Context) ([]*model.Session, error) {
	query := `
		SELECT id, student_id, teacher_id, slot_id, status, booking_request_id, created_at, cancelled_at
		FROM sessions
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*model.Session, 0)
	for rows.Next() {
		var session model.Session
		err := rows.Scan(
			&session.ID,
			&session.StudentID,
			&session.TeacherID,
			&session.SlotID,
			&session.Status,
			&session.BookingRequestID,
			&session.CreatedAt,
			&session.CancelledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}
