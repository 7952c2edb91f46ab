package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayLabels(t *testing.T) {
	expected := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

	days := Weekdays()
	require.Len(t, days, DaysInWeek)
	for i, day := range days {
		assert.Equal(t, Weekday(i), day)
		assert.True(t, day.Valid())
		assert.Equal(t, expected[i], day.Label())
	}

	assert.False(t, Weekday(-1).Valid())
	assert.False(t, Weekday(7).Valid())
	assert.Equal(t, "", Weekday(7).Label())
	assert.Equal(t, "Weekday(9)", Weekday(9).String())
}

func TestMeasurementUnit(t *testing.T) {
	assert.True(t, UnitGrams.Valid())
	assert.True(t, UnitMilliliters.Valid())
	assert.True(t, UnitUnits.Valid())
	assert.False(t, MeasurementUnit("kg").Valid())
	assert.Equal(t, "grams", UnitGrams.Label())
}

func TestDifficulty(t *testing.T) {
	assert.False(t, Difficulty(0).Valid())
	assert.True(t, DifficultyMedium.Valid())
	assert.False(t, Difficulty(4).Valid())
	assert.Equal(t, "Hard", DifficultyHard.Label())
}

func TestHumaniseDuration(t *testing.T) {
	testCases := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{name: "zero", input: 0, expected: ""},
		{name: "seconds only", input: 20 * time.Second, expected: "20 secs"},
		{name: "minutes only", input: 45 * time.Minute, expected: "45 mins"},
		{name: "whole hours", input: 2 * time.Hour, expected: "2 hrs"},
		{name: "hours and minutes", input: 90 * time.Minute, expected: "1 hrs 30 mins"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumaniseDuration(tt.input))
		})
	}
}
