package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository struct {
	db Querier
}

func NewSubscriptionRepository(db Querier) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) WithTx(tx pgx.Tx) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

// Subscribe подписывает студента на учителя
func (r *SubscriptionRepository) Subscribe(ctx context.Context, sub model.Subscription) error {
	query := `
		INSERT INTO subscriptions (student_id, teacher_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, teacher_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, sub.StudentID, sub.TeacherID, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	return nil
}

// Unsubscribe удаляет подписку
func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, studentID, teacherID string) error {
	query := `
		DELETE FROM subscriptions
		WHERE student_id = $1 AND teacher_id = $2
	`

	_, err := r.db.Exec(ctx, query, studentID, teacherID)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}

	return nil
}

// GetAll получает все подписки
func (r *SubscriptionRepository) GetAll(ctx context.Context) ([]model.Subscription, error) {
	query := `
		SELECT student_id, teacher_id, created_at
		FROM subscriptions
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]model.Subscription, 0)
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.StudentID, &sub.TeacherID, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}
