package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-17")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 17}, d)
	assert.Equal(t, "2025-03-17", d.String())

	_, err = ParseDate("17.03.2025")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewDateNormalizes(t *testing.T) {
	assert.Equal(t, NewDate(2025, time.February, 1), NewDate(2025, time.January, 32))
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2025, time.March, 17)
	b := NewDate(2025, time.March, 18)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.InRange(a, b))
	assert.True(t, b.InRange(a, b))
	assert.False(t, b.AddDays(1).InRange(a, b))
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want Date
	}{
		{"monday", NewDate(2025, time.March, 17), NewDate(2025, time.March, 17)},
		{"wednesday", NewDate(2025, time.March, 19), NewDate(2025, time.March, 17)},
		{"sunday", NewDate(2025, time.March, 23), NewDate(2025, time.March, 17)},
		{"across month", NewDate(2025, time.April, 2), NewDate(2025, time.March, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.date.MondayOf())
		})
	}
}

func TestDateText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2024-12-31")))
	assert.Equal(t, NewDate(2024, time.December, 31), d)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", string(text))

	assert.Error(t, d.UnmarshalText([]byte("yesterday")))
}
