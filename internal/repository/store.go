package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store загружает и сохраняет состояние движка бронирования
type Store struct {
	pool          *pgxpool.Pool
	slots         *SlotRepository
	requests      *BookingRequestRepository
	sessions      *SessionRepository
	subscriptions *SubscriptionRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:          pool,
		slots:         NewSlotRepository(pool),
		requests:      NewBookingRequestRepository(pool),
		sessions:      NewSessionRepository(pool),
		subscriptions: NewSubscriptionRepository(pool),
	}
}

// Load читает полное состояние
func (s *Store) Load(ctx context.Context) (model.Snapshot, error) {
	var (
		snapshot model.Snapshot
		err      error
	)

	if snapshot.Slots, err = s.slots.GetAll(ctx); err != nil {
		return model.Snapshot{}, fmt.Errorf("load slots: %w", err)
	}
	if snapshot.Requests, err = s.requests.GetAll(ctx); err != nil {
		return model.Snapshot{}, fmt.Errorf("load booking requests: %w", err)
	}
	if snapshot.Sessions, err = s.sessions.GetAll(ctx); err != nil {
		return model.Snapshot{}, fmt.Errorf("load sessions: %w", err)
	}
	if snapshot.Subscriptions, err = s.subscriptions.GetAll(ctx); err != nil {
		return model.Snapshot{}, fmt.Errorf("load subscriptions: %w", err)
	}

	return snapshot, nil
}

// Apply применяет изменения в порядке записи в одной транзакции
func (s *Store) Apply(ctx context.Context, changes []model.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	slots := s.slots.WithTx(tx)
	requests := s.requests.WithTx(tx)
	sessions := s.sessions.WithTx(tx)
	subscriptions := s.subscriptions.WithTx(tx)

	for _, change := range changes {
		switch change.Kind {
		case model.ChangeSlotSaved:
			err = slots.Save(ctx, change.Slot)
		case model.ChangeSlotDeleted:
			err = slots.Delete(ctx, change.ID)
		case model.ChangeRequestSaved:
			err = requests.Save(ctx, change.Request)
		case model.ChangeRequestDeleted:
			err = requests.Delete(ctx, change.ID)
		case model.ChangeSessionSaved:
			err = sessions.Save(ctx, change.Session)
		case model.ChangeSubscriptionSaved:
			err = subscriptions.Subscribe(ctx, *change.Subscription)
		case model.ChangeSubscriptionDeleted:
			err = subscriptions.Unsubscribe(ctx, change.Subscription.StudentID, change.Subscription.TeacherID)
		default:
			err = fmt.Errorf("%w %q", ErrUnknownChange, change.Kind)
		}
		if err != nil {
			return fmt.Errorf("apply %s: %w", change.Kind, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
