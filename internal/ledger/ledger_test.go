package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/availability"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = model.NewDate(2025, time.March, 17)

// stepClock каждый вызов Now сдвигает время на секунду
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newLedger(t *testing.T) (*availability.Store, *Ledger) {
	t.Helper()
	clock := &stepClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := availability.NewStore(nil, clock)
	return store, NewLedger(store, nil, clock)
}

func TestBookDirect(t *testing.T) {
	store, l := newLedger(t)
	slot, err := store.CreateSlot("t1", monday, 9, 10)
	require.NoError(t, err)

	session, err := l.BookDirect("s1", "t1", slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionScheduled, session.Status)
	assert.Equal(t, "t1", session.TeacherID)
	assert.Equal(t, "s1", session.StudentID)
	assert.Nil(t, session.BookingRequestID)

	bound, _ := store.FindSlot(slot.ID)
	require.True(t, bound.IsBound())
	assert.Equal(t, session.ID, *bound.SessionID)

	_, err = l.BookDirect("s2", "t1", slot.ID)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	_, err = l.BookDirect("s2", "t1", uuid.New())
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	_, err = l.BookDirect("s2", "t2", slot.ID)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable, "slot of another teacher")

	_, err = l.BookDirect("", "t1", slot.ID)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestConcurrentBookDirectSingleWinner(t *testing.T) {
	store, l := newLedger(t)
	slot, err := store.CreateSlot("t1", monday, 9, 10)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.BookDirect("s", "t1", slot.ID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Len(t, l.ForTeacher("t1"), 1)
}

func TestCancel(t *testing.T) {
	store, l := newLedger(t)
	slot, _ := store.CreateSlot("t1", monday, 9, 10)
	session, err := l.BookDirect("s1", "t1", slot.ID)
	require.NoError(t, err)

	require.NoError(t, l.Cancel(session.ID))

	cancelled, ok := l.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, model.SessionCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	freed, _ := store.FindSlot(slot.ID)
	assert.False(t, freed.IsBound())

	assert.ErrorIs(t, l.Cancel(session.ID), model.ErrAlreadyCancelled)
	assert.ErrorIs(t, l.Cancel(uuid.New()), model.ErrSessionNotFound)

	rebooked, err := l.BookDirect("s2", "t1", slot.ID)
	require.NoError(t, err, "cancelled slot is bookable again")
	assert.NotEqual(t, session.ID, rebooked.ID)
}

func TestCancelAfterSlotDeleted(t *testing.T) {
	store, l := newLedger(t)
	slot, _ := store.CreateSlot("t1", monday, 9, 10)
	session, _ := l.BookDirect("s1", "t1", slot.ID)

	// Рассогласованное состояние: слот исчез, занятие осталось
	require.NoError(t, store.UnbindSession("t1", slot.ID))
	require.NoError(t, store.DeleteSlot("t1", slot.ID))

	assert.NoError(t, l.Cancel(session.ID))
}

func TestCancelKeepsForeignBinding(t *testing.T) {
	store, l := newLedger(t)
	slot, _ := store.CreateSlot("t1", monday, 9, 10)
	session, _ := l.BookDirect("s1", "t1", slot.ID)

	other := uuid.New()
	require.NoError(t, store.BindSession("t1", slot.ID, other))

	require.NoError(t, l.Cancel(session.ID))

	found, _ := store.FindSlot(slot.ID)
	require.True(t, found.IsBound())
	assert.Equal(t, other, *found.SessionID)
}

func TestQueries(t *testing.T) {
	store, l := newLedger(t)
	a, _ := store.CreateSlot("t1", monday, 9, 10)
	b, _ := store.CreateSlot("t1", monday, 10, 11)
	c, _ := store.CreateSlot("t2", monday, 9, 10)

	first, _ := l.BookDirect("s1", "t1", a.ID)
	second, _ := l.BookDirect("s2", "t1", b.ID)
	third, _ := l.BookDirect("s1", "t2", c.ID)
	require.NoError(t, l.Cancel(second.ID))

	teacher := l.ForTeacher("t1")
	require.Len(t, teacher, 1)
	assert.Equal(t, first.ID, teacher[0].ID)

	withHistory := l.ForTeacher("t1", IncludeCancelled())
	require.Len(t, withHistory, 2)
	assert.Equal(t, first.ID, withHistory[0].ID, "ordered by creation time")

	student := l.ForStudent("s1")
	require.Len(t, student, 2)
	assert.Equal(t, first.ID, student[0].ID)
	assert.Equal(t, third.ID, student[1].ID)

	assert.Len(t, l.ForStudent("s2", WithCancelled(false)), 0)
	assert.Len(t, l.ForStudent("s2", WithCancelled(true)), 1)

	bySlot := l.BySlotIDs([]uuid.UUID{b.ID, c.ID}, IncludeCancelled())
	require.Len(t, bySlot, 2)
	assert.Equal(t, second.ID, bySlot[0].ID)
	assert.Equal(t, third.ID, bySlot[1].ID)

	assert.Empty(t, l.ForTeacher("nobody"))
}

func TestRestoreSkipsKnownSessions(t *testing.T) {
	_, l := newLedger(t)

	session := &model.Session{
		ID:        uuid.New(),
		StudentID: "s1",
		TeacherID: "t1",
		SlotID:    uuid.New(),
		Status:    model.SessionScheduled,
	}
	l.Restore([]*model.Session{session})
	l.Restore([]*model.Session{session})

	assert.Len(t, l.ForTeacher("t1"), 1)
	got, ok := l.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, session, got)
}
