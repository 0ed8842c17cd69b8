package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFixture(t *testing.T) *Environment {
	t.Helper()
	now := schedulerNow()
	items := []WorkItem{
		{ID: "a", EstimatedHours: 2, RemainingHours: 2, DueAt: now.AddDate(0, 0, 5), Priority: PriorityHigh, Difficulty: DifficultyHard},
		{ID: "b", EstimatedHours: 6, RemainingHours: 6, DueAt: now.AddDate(0, 0, 2), Priority: PriorityMedium, Difficulty: DifficultyMedium},
	}
	slots := dailySlots(now, 3, 3)
	return NewEnvironment(items, slots, EnvConfig{MaxItems: 4, MaxSlots: 5, Now: now})
}

func TestEnvironmentObservationShape(t *testing.T) {
	env := envFixture(t)
	obs := env.Reset()
	assert.Len(t, obs, 4*5+5*2+2)
	assert.Equal(t, len(obs), env.ObservationSize())
	assert.Equal(t, 4*5+1, env.ActionSize())
}

func TestEnvironmentSkipLeavesStateUnchanged(t *testing.T) {
	env := envFixture(t)
	before := env.Reset()

	result := env.Step(Skip())

	assert.InDelta(t, -0.1, result.Reward, 1e-9)
	assert.False(t, result.Valid)
	assert.Equal(t, before, result.Observation)
	assert.Equal(t, 1, env.Steps())
}

func TestEnvironmentActionRoundTrip(t *testing.T) {
	env := envFixture(t)

	for _, action := range []Action{Skip(), ScheduleAction(0, 0), ScheduleAction(1, 4), ScheduleAction(3, 2)} {
		assert.Equal(t, action, env.DecodeAction(env.EncodeAction(action)))
	}

	// Out-of-range indexes decode to skip.
	assert.Equal(t, Skip(), env.DecodeAction(-1))
	assert.Equal(t, Skip(), env.DecodeAction(env.ActionSize()))
}

func TestEnvironmentInvalidActionPenalised(t *testing.T) {
	env := envFixture(t)
	before := env.Reset()

	// Item index 3 is padding: there are only two real items.
	result := env.Step(ScheduleAction(3, 0))
	assert.InDelta(t, -1.0, result.Reward, 1e-9)
	assert.False(t, result.Valid)
	assert.Equal(t, before, result.Observation)

	// Slot index 4 is padding.
	result = env.Step(ScheduleAction(0, 4))
	assert.InDelta(t, -1.0, result.Reward, 1e-9)
	assert.False(t, result.Valid)
}

func TestEnvironmentValidActionAllocates(t *testing.T) {
	env := envFixture(t)
	env.Reset()

	// Item a has 2h remaining; slot 0 holds 3h. Due in 5 days, high
	// priority, completes in one step: +10 completion, +3 early, +2 high
	// priority, +1 session length. Utilization 2/3 is under the 70% bar.
	result := env.Step(ScheduleAction(0, 0))

	require.True(t, result.Valid)
	assert.InDelta(t, 16.0, result.Reward, 1e-9)
	assert.InDelta(t, 2.0, env.TotalScheduledHours(), 1e-9)
	assert.Equal(t, 1, env.CompletedItems())

	log := env.Log()
	require.Len(t, log, 1)
	assert.Equal(t, "a", log[0].ItemID)
	assert.InDelta(t, 2.0, log[0].Duration, 1e-9)
}

func TestEnvironmentRewardsEfficientPacking(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{{ID: "a", EstimatedHours: 10, RemainingHours: 10, DueAt: now.AddDate(0, 0, 10), Priority: PriorityLow, Difficulty: DifficultyMedium}}
	start := now.Add(time.Hour)
	slots := []TimeSlot{{Start: start, End: start.Add(3 * time.Hour), DurationHours: 3}}
	env := NewEnvironment(items, slots, EnvConfig{MaxItems: 2, MaxSlots: 2, Now: now})
	env.Reset()

	// 3h of a 3h slot is 100% utilization: +3 early, +1 length, +1 packing.
	result := env.Step(ScheduleAction(0, 0))
	require.True(t, result.Valid)
	assert.InDelta(t, 5.0, result.Reward, 1e-9)
}

func TestEnvironmentLateSchedulingPenalised(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{{ID: "a", EstimatedHours: 4, RemainingHours: 4, DueAt: now.AddDate(0, 0, 1), Priority: PriorityLow, Difficulty: DifficultyMedium}}
	start := now.AddDate(0, 0, 3)
	slots := []TimeSlot{{Start: start, End: start.Add(4 * time.Hour), DurationHours: 4}}
	env := NewEnvironment(items, slots, EnvConfig{MaxItems: 2, MaxSlots: 2, Now: now})
	env.Reset()

	// Slot starts two days after the deadline: -10 late, +1 length, +1
	// packing (3h of 4h is 75%).
	result := env.Step(ScheduleAction(0, 0))
	require.True(t, result.Valid)
	assert.InDelta(t, -8.0, result.Reward, 1e-9)
}

func TestEnvironmentTerminatesOnStepBudget(t *testing.T) {
	env := envFixture(t)
	env.Reset()

	// Two items allow 6 steps; skipping burns the budget without progress.
	var result StepResult
	for i := 0; i < 6; i++ {
		result = env.Step(Skip())
	}
	assert.True(t, result.Done)
}

func TestEnvironmentTerminatesWhenAllItemsComplete(t *testing.T) {
	now := schedulerNow()
	items := []WorkItem{{ID: "a", EstimatedHours: 2, RemainingHours: 2, DueAt: now.AddDate(0, 0, 5)}}
	slots := dailySlots(now, 2, 3)
	env := NewEnvironment(items, slots, EnvConfig{MaxItems: 2, MaxSlots: 3, Now: now})
	env.Reset()

	result := env.Step(ScheduleAction(0, 0))
	assert.True(t, result.Done)
	assert.Equal(t, 1, env.CompletedItems())
}

func TestEnvironmentDeterministicTransitions(t *testing.T) {
	actions := []Action{ScheduleAction(1, 0), Skip(), ScheduleAction(0, 1), ScheduleAction(1, 1)}

	run := func() ([]float64, []float64) {
		env := envFixture(t)
		obs := env.Reset()
		rewards := make([]float64, 0, len(actions))
		for _, action := range actions {
			result := env.Step(action)
			obs = result.Observation
			rewards = append(rewards, result.Reward)
		}
		return obs, rewards
	}

	obsA, rewardsA := run()
	obsB, rewardsB := run()
	assert.Equal(t, obsA, obsB)
	assert.Equal(t, rewardsA, rewardsB)
}

func TestEnvironmentResetRestoresInitialState(t *testing.T) {
	env := envFixture(t)
	initial := env.Reset()

	env.Step(ScheduleAction(0, 0))
	env.Step(ScheduleAction(1, 1))
	require.NotEmpty(t, env.Log())

	assert.Equal(t, initial, env.Reset())
	assert.Empty(t, env.Log())
	assert.Zero(t, env.Steps())
	assert.Zero(t, env.TotalScheduledHours())
}
