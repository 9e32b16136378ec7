package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SlotRepository struct {
	db Querier
}

func NewSlotRepository(db Querier) *SlotRepository {
	return &SlotRepository{db: db}
}

// WithTx возвращает репозиторий, работающий внутри транзакции
func (r *SlotRepository) WithTx(tx pgx.Tx) *SlotRepository {
	return &SlotRepository{db: tx}
}

// Save создаёт слот или обновляет привязку занятия
func (r *SlotRepository) Save(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (id, teacher_id, date, start_hour, end_hour, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET session_id = EXCLUDED.session_id
	`

	_, err := r.db.Exec(
		ctx, query,
		slot.ID,
		slot.TeacherID,
		slot.Date.Time(),
		slot.StartHour,
		slot.EndHour,
		slot.SessionID,
		slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save slot: %w", err)
	}

	return nil
}

// Delete удаляет слот; отсутствие строки не ошибка
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// GetAll получает все слоты
func (r *SlotRepository) GetAll(ctx context.Context) ([]*model.Slot, error) {
	query := `
		SELECT id, teacher_id, date, start_hour, end_hour, session_id, created_at
		FROM slots
		ORDER BY date, start_hour
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*model.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		slot model.Slot
		date time.Time
	)
	err := row.Scan(
		&slot.ID,
		&slot.TeacherID,
		&date,
		&slot.StartHour,
		&slot.EndHour,
		&slot.SessionID,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.Date = model.DateOf(date)
	return &slot, nil
}
