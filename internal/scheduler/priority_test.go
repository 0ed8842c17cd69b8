package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreOrdersByUrgency(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	urgent := WorkItem{ID: "a", RemainingHours: 4, DueAt: now.AddDate(0, 0, 1), Difficulty: DifficultyMedium}
	relaxed := WorkItem{ID: "b", RemainingHours: 4, DueAt: now.AddDate(0, 0, 8), Difficulty: DifficultyMedium}

	assert.Greater(t, Score(urgent, now), Score(relaxed, now))
}

func TestScoreUrgencyClamped(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// 10+ days out contributes zero urgency.
	farOut := WorkItem{ID: "a", RemainingHours: 10, DueAt: now.AddDate(0, 0, 30), Difficulty: DifficultyHard}
	assert.Zero(t, Score(farOut, now))

	// Overdue items cap at the same urgency as items due right now.
	overdue := WorkItem{ID: "b", RemainingHours: 5, DueAt: now.AddDate(0, 0, -14), Difficulty: DifficultyMedium}
	dueNow := WorkItem{ID: "c", RemainingHours: 5, DueAt: now, Difficulty: DifficultyMedium}
	assert.InDelta(t, Score(dueNow, now), Score(overdue, now), 1e-9)
}

func TestScoreWeighsDifficultyAndEffort(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 2)

	easy := WorkItem{ID: "a", RemainingHours: 4, DueAt: due, Difficulty: DifficultyEasy}
	hard := WorkItem{ID: "b", RemainingHours: 4, DueAt: due, Difficulty: DifficultyHard}
	assert.InDelta(t, 2.0, Score(hard, now)/Score(easy, now), 1e-9)

	small := WorkItem{ID: "c", RemainingHours: 2, DueAt: due, Difficulty: DifficultyMedium}
	large := WorkItem{ID: "d", RemainingHours: 6, DueAt: due, Difficulty: DifficultyMedium}
	assert.Greater(t, Score(large, now), Score(small, now))
}
