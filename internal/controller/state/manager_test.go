package state

import (
	"testing"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	m := NewManager()
	first, second := uuid.New(), uuid.New()
	m.Remember("u1", ListRequests, []uuid.UUID{first, second})

	id, err := m.Resolve("u1", ListRequests, "2")
	require.NoError(t, err)
	assert.Equal(t, second, id)

	id, err = m.Resolve("u1", ListRequests, "#1")
	require.NoError(t, err)
	assert.Equal(t, first, id)

	explicit := uuid.New()
	id, err = m.Resolve("u2", ListSlots, explicit.String())
	require.NoError(t, err)
	assert.Equal(t, explicit, id)

	for _, ref := range []string{"0", "3", "abc"} {
		_, err := m.Resolve("u1", ListRequests, ref)
		assert.ErrorIs(t, err, model.ErrValidation, ref)
	}

	_, err = m.Resolve("u1", ListSlots, "1")
	assert.ErrorIs(t, err, model.ErrValidation, "lists are per kind")
	_, err = m.Resolve("u2", ListRequests, "1")
	assert.ErrorIs(t, err, model.ErrValidation, "lists are per user")
}

func TestRememberCopiesAndClear(t *testing.T) {
	m := NewManager()
	ids := []uuid.UUID{uuid.New()}
	m.Remember("u1", ListSlots, ids)
	ids[0] = uuid.Nil

	id, err := m.Resolve("u1", ListSlots, "1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	m.ClearState("u1")
	_, err = m.Resolve("u1", ListSlots, "1")
	assert.Error(t, err)
}
