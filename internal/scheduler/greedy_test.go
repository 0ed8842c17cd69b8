package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedulerNow() time.Time {
	return time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
}

func dailySlots(now time.Time, days int, hours float64) []TimeSlot {
	slots := make([]TimeSlot, 0, days)
	for i := 0; i < days; i++ {
		start := now.AddDate(0, 0, i).Add(time.Hour)
		slots = append(slots, TimeSlot{
			Start:         start,
			End:           start.Add(durationToTime(hours)),
			DurationHours: hours,
		})
	}
	return slots
}

func TestGreedySplitsLargeItemAcrossSlots(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{{
		ID:             "essay",
		EstimatedHours: 8,
		RemainingHours: 8,
		DueAt:          now.AddDate(0, 0, 5),
		Priority:       PriorityHigh,
		Difficulty:     DifficultyHard,
	}}
	slots := dailySlots(now, 3, 3)

	schedule := NewGreedyScheduler(DefaultOptions(), nil).Schedule(items, slots, now)

	require.Len(t, schedule.Sessions, 3)
	assert.InDelta(t, 3.0, schedule.Sessions[0].DurationHours, 1e-9)
	assert.InDelta(t, 3.0, schedule.Sessions[1].DurationHours, 1e-9)
	assert.InDelta(t, 2.0, schedule.Sessions[2].DurationHours, 1e-9)
	assert.InDelta(t, 8.0, schedule.TotalHoursScheduled, 1e-9)
	assert.Equal(t, []string{"essay"}, schedule.CoveredItemIDs)
}

func TestGreedyNoSlotsYieldsEmptySchedule(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{{ID: "reading", EstimatedHours: 2, RemainingHours: 2, DueAt: now.AddDate(0, 0, 3)}}

	schedule := NewGreedyScheduler(DefaultOptions(), nil).Schedule(items, nil, now)

	assert.Empty(t, schedule.Sessions)
	assert.Zero(t, schedule.TotalHoursScheduled)
	assert.Empty(t, schedule.CoveredItemIDs)
}

func TestGreedyNoItemsYieldsEmptySchedule(t *testing.T) {
	now := schedulerNow()
	schedule := NewGreedyScheduler(DefaultOptions(), nil).Schedule(nil, dailySlots(now, 2, 2), now)
	assert.Empty(t, schedule.Sessions)
	assert.Zero(t, schedule.TotalHoursScheduled)
}

func TestGreedyUrgentItemWinsContestedSlot(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{
		{ID: "low", EstimatedHours: 5, RemainingHours: 5, DueAt: now.AddDate(0, 0, 10), Priority: PriorityLow, Difficulty: DifficultyMedium},
		{ID: "high", EstimatedHours: 5, RemainingHours: 5, DueAt: now.AddDate(0, 0, 1), Priority: PriorityHigh, Difficulty: DifficultyMedium},
	}
	start := now.Add(2 * time.Hour)
	slots := []TimeSlot{{Start: start, End: start.Add(5 * time.Hour), DurationHours: 5}}

	schedule := NewGreedyScheduler(DefaultOptions(), nil).Schedule(items, slots, now)

	require.NotEmpty(t, schedule.Sessions)
	for _, session := range schedule.Sessions {
		assert.Equal(t, "high", session.WorkItemID)
	}
	assert.InDelta(t, 5.0, schedule.TotalHoursScheduled, 1e-9)
	assert.Equal(t, []string{"high"}, schedule.CoveredItemIDs)
}

func TestGreedyDeterministic(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{
		{ID: "a", EstimatedHours: 4, RemainingHours: 4, DueAt: now.AddDate(0, 0, 3), Priority: PriorityMedium, Difficulty: DifficultyMedium},
		{ID: "b", EstimatedHours: 4, RemainingHours: 4, DueAt: now.AddDate(0, 0, 3), Priority: PriorityMedium, Difficulty: DifficultyMedium},
		{ID: "c", EstimatedHours: 6, RemainingHours: 6, DueAt: now.AddDate(0, 0, 2), Priority: PriorityHigh, Difficulty: DifficultyHard},
	}
	slots := dailySlots(now, 5, 2.5)

	g := NewGreedyScheduler(DefaultOptions(), nil)
	first := g.Schedule(items, slots, now)
	second := g.Schedule(items, slots, now)

	assert.Equal(t, first, second)
}

func TestGreedyDoesNotMutateInputs(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{{ID: "a", EstimatedHours: 4, RemainingHours: 4, DueAt: now.AddDate(0, 0, 2)}}
	slots := dailySlots(now, 2, 2)

	NewGreedyScheduler(DefaultOptions(), nil).Schedule(items, slots, now)

	assert.InDelta(t, 4.0, items[0].RemainingHours, 1e-9)
	assert.InDelta(t, 2.0, slots[0].DurationHours, 1e-9)
	assert.False(t, slots[0].Used)
}

func TestGreedyRespectsInvariants(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{
		{ID: "a", EstimatedHours: 7.5, RemainingHours: 7.5, DueAt: now.AddDate(0, 0, 4), Priority: PriorityHigh, Difficulty: DifficultyHard},
		{ID: "b", EstimatedHours: 1.25, RemainingHours: 1.25, DueAt: now.AddDate(0, 0, 6), Priority: PriorityLow, Difficulty: DifficultyEasy},
		{ID: "c", EstimatedHours: 12, RemainingHours: 12, DueAt: now.AddDate(0, 0, 2), Priority: PriorityMedium, Difficulty: DifficultyMedium},
	}
	slots := dailySlots(now, 4, 3.5)

	schedule := NewGreedyScheduler(DefaultOptions(), nil).Schedule(items, slots, now)

	assertScheduleInvariants(t, schedule, items, slots, DefaultOptions())
}

// assertScheduleInvariants checks the allocation invariants shared by both
// strategies: no item over-allocation, no slot over-draw, session bounds, and
// sessions inside their slot's original window.
func assertScheduleInvariants(t *testing.T, schedule Schedule, items []WorkItem, slots []TimeSlot, opts Options) {
	t.Helper()

	perItem := make(map[string]float64)
	for _, session := range schedule.Sessions {
		perItem[session.WorkItemID] += session.DurationHours

		assert.GreaterOrEqual(t, session.DurationHours, opts.MinSessionHours)
		assert.LessOrEqual(t, session.DurationHours, opts.MaxSessionHours+1e-9)
		assert.InDelta(t, session.End.Sub(session.Start).Hours(), session.DurationHours, 1e-6)

		within := false
		for _, slot := range slots {
			if !session.Start.Before(slot.Start) && !session.End.After(slot.End) {
				within = true
				break
			}
		}
		assert.True(t, within, "session %v-%v must lie inside one slot window", session.Start, session.End)
	}

	estimated := make(map[string]float64)
	for _, item := range items {
		estimated[item.ID] = item.EstimatedHours
	}
	for id, hours := range perItem {
		assert.LessOrEqual(t, hours, estimated[id]+1e-9, "item %s over-allocated", id)
	}

	perSlot := make(map[int]float64)
	for _, session := range schedule.Sessions {
		for i, slot := range slots {
			if !session.Start.Before(slot.Start) && !session.End.After(slot.End) {
				perSlot[i] += session.DurationHours
				break
			}
		}
	}
	for i, hours := range perSlot {
		assert.LessOrEqual(t, hours, slots[i].DurationHours+1e-9, "slot %d over-drawn", i)
	}
}
