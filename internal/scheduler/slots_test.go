package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTimeSlotsMatchesWeekdays(t *testing.T) {
	// 2026-08-31 is a Monday.
	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	rules := []AvailabilityRule{
		{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"}, // Monday
		{DayOfWeek: 2, StartTime: "14:00", EndTime: "16:30"}, // Wednesday
	}

	slots := GenerateTimeSlots(rules, start, end)
	require.Len(t, slots, 2)

	assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), slots[0].Start)
	assert.InDelta(t, 3.0, slots[0].DurationHours, 1e-9)

	assert.Equal(t, time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC), slots[1].Start)
	assert.InDelta(t, 2.5, slots[1].DurationHours, 1e-9)
}

func TestGenerateTimeSlotsInclusiveRange(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) // Monday
	rules := []AvailabilityRule{{DayOfWeek: 0, StartTime: "10:00", EndTime: "11:00"}}

	// Single-day range matching the rule's weekday yields exactly one slot.
	slots := GenerateTimeSlots(rules, day, day)
	require.Len(t, slots, 1)

	// Two full weeks yield one slot per Monday.
	slots = GenerateTimeSlots(rules, day, day.AddDate(0, 0, 13))
	assert.Len(t, slots, 2)
}

func TestGenerateTimeSlotsSkipsDegenerateRules(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	rules := []AvailabilityRule{
		{DayOfWeek: 0, StartTime: "12:00", EndTime: "12:00"},
		{DayOfWeek: 0, StartTime: "15:00", EndTime: "09:00"},
		{DayOfWeek: 0, StartTime: "bogus", EndTime: "10:00"},
	}
	assert.Empty(t, GenerateTimeSlots(rules, day, day.AddDate(0, 0, 6)))
}

func TestGenerateTimeSlotsEmptyInputs(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, GenerateTimeSlots(nil, day, day.AddDate(0, 0, 7)))

	rules := []AvailabilityRule{{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"}}
	assert.Empty(t, GenerateTimeSlots(rules, day, day.AddDate(0, 0, -1)))
}

func TestMondayIndexed(t *testing.T) {
	assert.Equal(t, 0, mondayIndexed(time.Monday))
	assert.Equal(t, 5, mondayIndexed(time.Saturday))
	assert.Equal(t, 6, mondayIndexed(time.Sunday))
}
