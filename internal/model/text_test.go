package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateText(t *testing.T) {
	require.NoError(t, ValidateText("note", ""))
	require.NoError(t, ValidateText("note", "Хочу разобрать домашку"))

	assert.ErrorIs(t, ValidateText("note", "a\x00b"), ErrValidation)
	assert.ErrorIs(t, ValidateText("note", "bad \xff byte"), ErrValidation)
}

func TestValidateID(t *testing.T) {
	require.NoError(t, ValidateID("teacher id", "100"))

	for _, id := range []string{"", "x\x00y", "\xc3"} {
		assert.ErrorIs(t, ValidateID("teacher id", id), ErrValidation, "%q", id)
	}
}
