package scheduler

import "time"

// Score combines deadline urgency, difficulty weight and remaining effort
// into a single comparable value. The numeric scale is internal; callers may
// only rely on the ordering it induces.
func Score(item WorkItem, now time.Time) float64 {
	return urgency(item.DueAt, now) * difficultyWeight(item.Difficulty) * item.RemainingHours
}

// urgency grows linearly as the due date approaches and is capped in both
// directions: 0 when the deadline is 10+ days away, 1 when due or overdue.
func urgency(dueAt, now time.Time) float64 {
	daysUntilDue := dueAt.Sub(now).Hours() / 24.0
	u := 10.0 - daysUntilDue
	if u < 0 {
		u = 0
	}
	if u > 10 {
		u = 10
	}
	return u / 10.0
}

func difficultyWeight(d Difficulty) float64 {
	switch d {
	case DifficultyEasy:
		return 1.0
	case DifficultyHard:
		return 2.0
	default:
		return 1.5
	}
}
