package scheduler

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossEntropyTrainerPersistsArtifact(t *testing.T) {
	now := schedulerNow()
	rng := rand.New(rand.NewSource(42))
	scenarios := GenerateScenarios(2, now, rng)
	path := filepath.Join(t.TempDir(), "models", "policy.json")

	trainer := NewCrossEntropyTrainer(path, EnvConfig{MaxItems: 10, MaxSlots: 20, Now: now}, nil)
	trainer.Population = 4
	trainer.EliteCount = 2

	result := trainer.Train(context.Background(), scenarios, 20)

	require.True(t, result.Success)
	assert.Equal(t, path, result.ArtifactPath)
	assert.Greater(t, result.Episodes, 0)

	policy, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 10*5+20*2+2, policy.Inputs)
	assert.Equal(t, 10*20+1, policy.Outputs)
}

func TestCrossEntropyTrainerRequiresScenarios(t *testing.T) {
	trainer := NewCrossEntropyTrainer(filepath.Join(t.TempDir(), "policy.json"), EnvConfig{}, nil)
	result := trainer.Train(context.Background(), nil, 100)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestCrossEntropyTrainerHonoursCancellation(t *testing.T) {
	now := schedulerNow()
	scenarios := GenerateScenarios(1, now, rand.New(rand.NewSource(1)))
	path := filepath.Join(t.TempDir(), "policy.json")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trainer := NewCrossEntropyTrainer(path, EnvConfig{MaxItems: 10, MaxSlots: 20, Now: now}, nil)
	result := trainer.Train(ctx, scenarios, 1000000)

	// Cancellation stops the search but still persists the best policy so
	// partial training is never wasted.
	assert.True(t, result.Success)
	assert.Equal(t, path, result.ArtifactPath)
}

func TestGenerateScenariosShape(t *testing.T) {
	now := schedulerNow()
	scenarios := GenerateScenarios(3, now, rand.New(rand.NewSource(9)))
	require.Len(t, scenarios, 3)

	for _, scenario := range scenarios {
		assert.NotEmpty(t, scenario.Items)
		assert.NotEmpty(t, scenario.Slots)
		for _, item := range scenario.Items {
			assert.Greater(t, item.EstimatedHours, 0.0)
			assert.True(t, item.DueAt.After(now))
		}
		for _, slot := range scenario.Slots {
			assert.True(t, slot.End.After(slot.Start))
			assert.InDelta(t, slot.End.Sub(slot.Start).Hours(), slot.DurationHours, 1e-6)
		}
	}
}

func TestTrainedPolicyDrivesRollout(t *testing.T) {
	now := schedulerNow()
	envCfg := EnvConfig{MaxItems: 10, MaxSlots: 20, Now: now}
	scenarios := GenerateScenarios(1, now, rand.New(rand.NewSource(5)))
	path := filepath.Join(t.TempDir(), "policy.json")

	trainer := NewCrossEntropyTrainer(path, envCfg, nil)
	trainer.Population = 3
	trainer.EliteCount = 1
	result := trainer.Train(context.Background(), scenarios, 10)
	require.True(t, result.Success)

	items, slots := rolloutFixture()
	policy := NewPolicyScheduler(path, DefaultOptions(), envCfg, nil)
	require.True(t, policy.Ready())

	schedule := policy.Schedule(items, slots, now)
	assertScheduleInvariants(t, schedule, items, slots, Options{MinSessionHours: 0, MaxSessionHours: 3})
}
