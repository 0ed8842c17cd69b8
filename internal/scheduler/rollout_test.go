package scheduler

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rolloutFixture() ([]WorkItem, []TimeSlot) {
	now := schedulerNow()
	items := []WorkItem{
		{ID: "essay", EstimatedHours: 5, RemainingHours: 5, DueAt: now.AddDate(0, 0, 2), Priority: PriorityHigh, Difficulty: DifficultyHard},
		{ID: "lab", EstimatedHours: 3, RemainingHours: 3, DueAt: now.AddDate(0, 0, 6), Priority: PriorityLow, Difficulty: DifficultyEasy},
	}
	return items, dailySlots(now, 4, 3)
}

func TestPolicySchedulerFallsBackWhenArtifactMissing(t *testing.T) {
	items, slots := rolloutFixture()
	now := schedulerNow()
	path := filepath.Join(t.TempDir(), "missing.json")

	policy := NewPolicyScheduler(path, DefaultOptions(), EnvConfig{Now: now}, nil)
	greedy := NewGreedyScheduler(DefaultOptions(), nil)

	assert.False(t, policy.Ready())
	assert.Equal(t, greedy.Schedule(items, slots, now), policy.Schedule(items, slots, now))
}

func TestPolicySchedulerFallsBackOnCorruptArtifact(t *testing.T) {
	items, slots := rolloutFixture()
	now := schedulerNow()
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	policy := NewPolicyScheduler(path, DefaultOptions(), EnvConfig{Now: now}, nil)
	greedy := NewGreedyScheduler(DefaultOptions(), nil)

	assert.False(t, policy.Ready())
	assert.Equal(t, greedy.Schedule(items, slots, now), policy.Schedule(items, slots, now))
}

func TestPolicySchedulerFallsBackOnShapeMismatch(t *testing.T) {
	items, slots := rolloutFixture()
	now := schedulerNow()
	path := filepath.Join(t.TempDir(), "wrong-shape.json")

	// Valid artifact trained against a differently sized environment.
	artifact := NewRandomPolicy(4, 3, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, artifact.Save(path))

	policy := NewPolicyScheduler(path, DefaultOptions(), EnvConfig{MaxItems: 5, MaxSlots: 10, Now: now}, nil)
	greedy := NewGreedyScheduler(DefaultOptions(), nil)

	assert.True(t, policy.Ready())
	assert.Equal(t, greedy.Schedule(items, slots, now), policy.Schedule(items, slots, now))
}

func TestPolicySchedulerRolloutRespectsInvariants(t *testing.T) {
	items, slots := rolloutFixture()
	now := schedulerNow()
	envCfg := EnvConfig{MaxItems: 5, MaxSlots: 10, Now: now}
	path := filepath.Join(t.TempDir(), "policy.json")

	env := NewEnvironment(items, slots, envCfg)
	artifact := NewRandomPolicy(env.ObservationSize(), 8, env.ActionSize(), rand.New(rand.NewSource(7)))
	require.NoError(t, artifact.Save(path))

	policy := NewPolicyScheduler(path, DefaultOptions(), envCfg, nil)
	require.True(t, policy.Ready())

	schedule := policy.Schedule(items, slots, now)
	assertScheduleInvariants(t, schedule, items, slots, Options{MinSessionHours: 0, MaxSessionHours: 3})
}

func TestPolicySchedulerRolloutDeterministic(t *testing.T) {
	items, slots := rolloutFixture()
	now := schedulerNow()
	envCfg := EnvConfig{MaxItems: 5, MaxSlots: 10, Now: now}
	path := filepath.Join(t.TempDir(), "policy.json")

	env := NewEnvironment(items, slots, envCfg)
	artifact := NewRandomPolicy(env.ObservationSize(), 8, env.ActionSize(), rand.New(rand.NewSource(11)))
	require.NoError(t, artifact.Save(path))

	policy := NewPolicyScheduler(path, DefaultOptions(), envCfg, nil)
	first := policy.Schedule(items, slots, now)
	second := policy.Schedule(items, slots, now)
	assert.Equal(t, first, second)
}

func TestPolicySchedulerReloadPicksUpNewArtifact(t *testing.T) {
	items, slots := rolloutFixture()
	now := schedulerNow()
	envCfg := EnvConfig{MaxItems: 5, MaxSlots: 10, Now: now}
	path := filepath.Join(t.TempDir(), "policy.json")

	policy := NewPolicyScheduler(path, DefaultOptions(), envCfg, nil)
	assert.False(t, policy.Ready())

	env := NewEnvironment(items, slots, envCfg)
	artifact := NewRandomPolicy(env.ObservationSize(), 8, env.ActionSize(), rand.New(rand.NewSource(3)))
	require.NoError(t, artifact.Save(path))

	// The failed load is memoized until an explicit reload.
	assert.False(t, policy.Ready())
	policy.Reload()
	assert.True(t, policy.Ready())
}
