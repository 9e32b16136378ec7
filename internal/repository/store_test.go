package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore подключается к TEST_DB_DSN и накатывает миграции.
// Без переменной тест пропускается.
func newTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	provider, err := goose.NewProvider(goose.DialectPostgres, stdlib.OpenDBFromPool(pool), migrations.FS)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	_, err = provider.Up(ctx)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE slots, booking_requests, sessions, subscriptions`)
	require.NoError(t, err)

	return NewStore(pool), pool
}

func TestStoreApplyAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	slot := &model.Slot{
		ID: uuid.New(), TeacherID: "100", Date: model.NewDate(2024, time.June, 10),
		StartHour: 9.25, EndHour: 10.75, CreatedAt: now,
	}
	request := &model.BookingRequest{
		ID: uuid.New(), StudentID: "200", TeacherID: "100", SlotID: slot.ID,
		Status: model.RequestPending, Requested: model.SnapshotOf(slot), StudentNote: "hi", CreatedAt: now,
	}
	requestID := request.ID
	session := &model.Session{
		ID: uuid.New(), StudentID: "200", TeacherID: "100", SlotID: slot.ID,
		Status: model.SessionScheduled, BookingRequestID: &requestID, CreatedAt: now,
	}
	sub := model.Subscription{StudentID: "200", TeacherID: "100", CreatedAt: now}

	require.NoError(t, store.Apply(ctx, []model.Change{
		model.SlotSaved(slot),
		model.RequestSaved(request),
		model.SubscriptionSaved(sub),
		model.SubscriptionSaved(sub),
	}))

	request.Status = model.RequestAccepted
	request.ResolvedAt = &now
	slot.SessionID = &session.ID
	require.NoError(t, store.Apply(ctx, []model.Change{
		model.RequestSaved(request),
		model.SessionSaved(session),
		model.SlotSaved(slot),
	}))

	snapshot, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, snapshot.Slots, 1)
	assert.Equal(t, slot.Date, snapshot.Slots[0].Date)
	assert.Equal(t, 9.25, snapshot.Slots[0].StartHour)
	require.NotNil(t, snapshot.Slots[0].SessionID)
	assert.Equal(t, session.ID, *snapshot.Slots[0].SessionID)

	require.Len(t, snapshot.Requests, 1)
	assert.Equal(t, model.RequestAccepted, snapshot.Requests[0].Status)
	assert.Equal(t, request.Requested, snapshot.Requests[0].Requested)

	require.Len(t, snapshot.Sessions, 1)
	assert.Equal(t, requestID, *snapshot.Sessions[0].BookingRequestID)
	assert.Len(t, snapshot.Subscriptions, 1)
}

func TestStoreApplyIsAtomic(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	slot := &model.Slot{ID: uuid.New(), TeacherID: "100", Date: model.NewDate(2024, time.June, 10), StartHour: 9, EndHour: 10}
	err := store.Apply(ctx, []model.Change{
		model.SlotSaved(slot),
		{Kind: "bogus"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownChange)
	assert.True(t, IsPermanent(err))

	snapshot, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Slots)
}

func TestStoreApplyRejectsNulBytePermanently(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	request := &model.BookingRequest{
		ID: uuid.New(), StudentID: "200", TeacherID: "100", SlotID: uuid.New(), Status: model.RequestPending,
		Requested:   model.SlotSnapshot{Date: model.NewDate(2024, time.June, 10), StartHour: 9, EndHour: 10},
		StudentNote: "a\x00b",
	}
	err := store.Apply(ctx, []model.Change{model.RequestSaved(request)})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestStoreRequestDeleteAndUnsubscribe(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	request := &model.BookingRequest{
		ID: uuid.New(), StudentID: "200", TeacherID: "100", SlotID: uuid.New(), Status: model.RequestPending,
		Requested: model.SlotSnapshot{Date: model.NewDate(2024, time.June, 10), StartHour: 9, EndHour: 10},
	}
	sub := model.Subscription{StudentID: "200", TeacherID: "100"}
	require.NoError(t, store.Apply(ctx, []model.Change{model.RequestSaved(request), model.SubscriptionSaved(sub)}))
	require.NoError(t, store.Apply(ctx, []model.Change{model.RequestDeleted(request.ID), model.SubscriptionDeleted(sub)}))

	snapshot, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Requests)
	assert.Empty(t, snapshot.Subscriptions)
}
