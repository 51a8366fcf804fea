package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), date)

	date, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, date.IsZero())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	got := StartOfDay(time.Date(2024, 3, 10, 22, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.InDelta(t, 1.5, DaysBetween(from, from.Add(36*time.Hour)), 1e-9)
	assert.Zero(t, DaysBetween(from, from))
}
