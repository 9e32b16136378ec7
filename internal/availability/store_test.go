package availability

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu      sync.Mutex
	changes []model.Change
}

func (c *changeLog) Record(changes ...model.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, changes...)
}

func (c *changeLog) kinds() []model.ChangeKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]model.ChangeKind, 0, len(c.changes))
	for _, ch := range c.changes {
		kinds = append(kinds, ch.Kind)
	}
	return kinds
}

var monday = model.NewDate(2025, time.March, 17)

func TestCreateSlot(t *testing.T) {
	log := &changeLog{}
	store := NewStore(log, nil)

	slot, err := store.CreateSlot("t1", monday, 9, 10.5)
	require.NoError(t, err)
	assert.Equal(t, "t1", slot.TeacherID)
	assert.Equal(t, monday, slot.Date)
	assert.False(t, slot.IsBound())
	assert.Equal(t, []model.ChangeKind{model.ChangeSlotSaved}, log.kinds())

	found, ok := store.FindSlot(slot.ID)
	require.True(t, ok)
	assert.Equal(t, slot, found)
}

func TestCreateSlotValidation(t *testing.T) {
	store := NewStore(nil, nil)

	tests := []struct {
		name       string
		teacher    string
		date       model.Date
		start, end float64
	}{
		{"empty teacher", "", monday, 9, 10},
		{"nul in teacher", "t\x001", monday, 9, 10},
		{"zero date", "t1", model.Date{}, 9, 10},
		{"end before start", "t1", monday, 10, 9},
		{"empty interval", "t1", monday, 10, 10},
		{"past midnight", "t1", monday, 23, 24.5},
		{"off grid", "t1", monday, 9.1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateSlot(tt.teacher, tt.date, tt.start, tt.end)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestCreateSlotConflicts(t *testing.T) {
	store := NewStore(nil, nil)

	_, err := store.CreateSlot("t1", monday, 9, 10)
	require.NoError(t, err)

	_, err = store.CreateSlot("t1", monday, 9.5, 11)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = store.CreateSlot("t1", monday, 10, 11)
	assert.NoError(t, err, "adjacent slot is allowed")

	_, err = store.CreateSlot("t2", monday, 9, 10)
	assert.NoError(t, err, "other teacher is independent")

	_, err = store.CreateSlot("t1", monday.AddDays(1), 9, 10)
	assert.NoError(t, err, "other date is independent")
}

// Случайные интервалы: ни одна пара принятых слотов учителя в одну дату не пересекается
func TestCreateSlotNoOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	store := NewStore(nil, nil)

	for i := 0; i < 500; i++ {
		start := float64(rng.Intn(95)) * model.HourGranularity
		end := start + float64(1+rng.Intn(12))*model.HourGranularity
		if end > model.MaxHour {
			end = model.MaxHour
		}
		date := monday.AddDays(rng.Intn(3))
		_, err := store.CreateSlot("t1", date, start, end)
		if err != nil {
			require.ErrorIs(t, err, model.ErrConflict)
		}
	}

	slots := store.ListSlotsInRange("t1", monday, monday.AddDays(2))
	require.NotEmpty(t, slots)
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.Date != b.Date {
				continue
			}
			assert.False(t, model.Overlaps(a.StartHour, a.EndHour, b.StartHour, b.EndHour),
				"%s %v-%v overlaps %v-%v", a.Date, a.StartHour, a.EndHour, b.StartHour, b.EndHour)
		}
	}
}

func TestConcurrentCreateSlotSingleWinner(t *testing.T) {
	store := NewStore(nil, nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.CreateSlot("t1", monday, 9, 10); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestDeleteSlot(t *testing.T) {
	log := &changeLog{}
	store := NewStore(log, nil)

	slot, err := store.CreateSlot("t1", monday, 9, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteSlot("t2", slot.ID), model.ErrNotFound, "only the owner can delete")
	assert.ErrorIs(t, store.DeleteSlot("t1", uuid.New()), model.ErrSlotNotFound)

	require.NoError(t, store.BindSession("t1", slot.ID, uuid.New()))
	assert.ErrorIs(t, store.DeleteSlot("t1", slot.ID), model.ErrInvalidStateTransition)

	require.NoError(t, store.UnbindSession("t1", slot.ID))
	require.NoError(t, store.DeleteSlot("t1", slot.ID))

	_, ok := store.FindSlot(slot.ID)
	assert.False(t, ok)
	assert.Empty(t, store.ListSlotsInRange("t1", monday, monday))
	assert.Equal(t, []model.ChangeKind{
		model.ChangeSlotSaved,
		model.ChangeSlotSaved,
		model.ChangeSlotSaved,
		model.ChangeSlotDeleted,
	}, log.kinds())
}

func TestBindUnbind(t *testing.T) {
	log := &changeLog{}
	store := NewStore(log, nil)

	slot, err := store.CreateSlot("t1", monday, 9, 10)
	require.NoError(t, err)

	sessionID := uuid.New()
	require.NoError(t, store.BindSession("t1", slot.ID, sessionID))
	require.NoError(t, store.BindSession("t1", slot.ID, sessionID), "bind is idempotent")

	found, _ := store.FindSlot(slot.ID)
	require.True(t, found.IsBound())
	assert.Equal(t, sessionID, *found.SessionID)

	require.NoError(t, store.UnbindSession("t1", slot.ID))
	require.NoError(t, store.UnbindSession("t1", slot.ID))

	found, _ = store.FindSlot(slot.ID)
	assert.False(t, found.IsBound())

	// create + bind + unbind, повторы не записываются
	assert.Len(t, log.kinds(), 3)

	assert.ErrorIs(t, store.BindSession("t1", uuid.New(), sessionID), model.ErrSlotNotFound)
	assert.ErrorIs(t, store.BindSession("t2", slot.ID, sessionID), model.ErrSlotNotFound)
}

func TestListSlotsInRange(t *testing.T) {
	store := NewStore(nil, nil)

	late, _ := store.CreateSlot("t1", monday, 14, 15)
	early, _ := store.CreateSlot("t1", monday, 9, 10)
	next, _ := store.CreateSlot("t1", monday.AddDays(1), 8, 9)
	_, _ = store.CreateSlot("t1", monday.AddDays(7), 8, 9)

	slots := store.ListSlotsInRange("t1", monday, monday.AddDays(1))
	require.Len(t, slots, 3)
	assert.Equal(t, early.ID, slots[0].ID)
	assert.Equal(t, late.ID, slots[1].ID)
	assert.Equal(t, next.ID, slots[2].ID)

	assert.Empty(t, store.ListSlotsInRange("t1", monday.AddDays(1), monday))
	assert.Empty(t, store.ListSlotsInRange("unknown", monday, monday.AddDays(30)))
}

func TestReturnedSlotsAreCopies(t *testing.T) {
	store := NewStore(nil, nil)

	slot, _ := store.CreateSlot("t1", monday, 9, 10)
	slot.StartHour = 0

	found, _ := store.FindSlot(slot.ID)
	assert.Equal(t, 9.0, found.StartHour)
}

func TestRestoreAllowsLegacyOverlaps(t *testing.T) {
	store := NewStore(nil, nil)

	a := &model.Slot{ID: uuid.New(), TeacherID: "t1", Date: monday, StartHour: 9, EndHour: 11}
	b := &model.Slot{ID: uuid.New(), TeacherID: "t1", Date: monday, StartHour: 10, EndHour: 12}
	store.Restore([]*model.Slot{a, b})

	assert.Len(t, store.ListSlotsInRange("t1", monday, monday), 2)

	_, err := store.CreateSlot("t1", monday, 10.5, 11.5)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestUpdateUnknownTeacherLeavesNoTrace(t *testing.T) {
	log := &changeLog{}
	store := NewStore(log, nil)

	for i := range 1000 {
		called := false
		err := store.Update(uuid.NewString(), func(tx *Tx) error {
			called = true
			_, ok := tx.Slot(uuid.New())
			assert.False(t, ok)
			return tx.Bind(uuid.New(), uuid.New())
		})
		require.True(t, called, "call %d", i)
		assert.ErrorIs(t, err, model.ErrSlotNotFound)
	}
	assert.ErrorIs(t, store.UnbindSession("nobody", uuid.New()), model.ErrSlotNotFound)

	store.mu.RLock()
	assert.Empty(t, store.teachers)
	store.mu.RUnlock()
	assert.Empty(t, log.kinds())

	_, err := store.CreateSlot("t1", monday, 9, 10)
	require.NoError(t, err)
	store.mu.RLock()
	assert.Len(t, store.teachers, 1)
	store.mu.RUnlock()
}
