package scheduler

import (
	"sort"
	"time"
)

// Priority ranks how important a work item is to the student.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// ParsePriority maps the stored string form onto the ordinal, defaulting to medium.
func ParsePriority(raw string) Priority {
	switch raw {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// Difficulty ranks how demanding a work item is.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
)

// ParseDifficulty maps the stored string form onto the ordinal, defaulting to medium.
func ParseDifficulty(raw string) Difficulty {
	switch raw {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyHard:
		return "hard"
	default:
		return "medium"
	}
}

// WorkItem is a unit of schedulable effort. The engine works on private
// copies; RemainingHours is decremented as sessions are allocated and never
// drops below zero.
type WorkItem struct {
	ID             string
	Title          string
	EstimatedHours float64
	RemainingHours float64
	DueAt          time.Time
	Priority       Priority
	Difficulty     Difficulty
}

// AvailabilityRule is a recurring weekly availability window. DayOfWeek uses
// 0=Monday..6=Sunday; StartTime and EndTime are local clock strings "HH:MM".
type AvailabilityRule struct {
	DayOfWeek int
	StartTime string
	EndTime   string
}

// TimeSlot is a concrete dated window produced from an AvailabilityRule.
// DurationHours is the remaining capacity and shrinks during allocation;
// Start advances past consumed time so a partially used slot stays usable.
type TimeSlot struct {
	Start         time.Time
	End           time.Time
	DurationHours float64
	Used          bool
}

// ScheduledSession is a concrete study session allocated to a work item.
type ScheduledSession struct {
	WorkItemID    string
	Start         time.Time
	End           time.Time
	DurationHours float64
	Notes         string
}

// Schedule is the engine output: ordered sessions plus coverage accounting.
// Partial coverage is a valid result, not an error.
type Schedule struct {
	Sessions            []ScheduledSession
	TotalHoursScheduled float64
	CoveredItemIDs      []string
}

// Strategy selects the solving algorithm.
type Strategy string

const (
	StrategyGreedy Strategy = "greedy"
	StrategyPolicy Strategy = "policy"
)

// Options bounds per-session durations.
type Options struct {
	MinSessionHours float64
	MaxSessionHours float64
}

// DefaultOptions returns the standard session bounds.
func DefaultOptions() Options {
	return Options{MinSessionHours: 0.5, MaxSessionHours: 3.0}
}

func (o Options) withDefaults() Options {
	if o.MinSessionHours <= 0 {
		o.MinSessionHours = 0.5
	}
	if o.MaxSessionHours <= 0 {
		o.MaxSessionHours = 3.0
	}
	return o
}

func newSchedule(sessions []ScheduledSession) Schedule {
	total := 0.0
	covered := make(map[string]struct{})
	for _, s := range sessions {
		total += s.DurationHours
		covered[s.WorkItemID] = struct{}{}
	}
	ids := make([]string, 0, len(covered))
	for id := range covered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if sessions == nil {
		sessions = []ScheduledSession{}
	}
	return Schedule{Sessions: sessions, TotalHoursScheduled: total, CoveredItemIDs: ids}
}

func copyItems(items []WorkItem) []WorkItem {
	out := make([]WorkItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].RemainingHours <= 0 {
			out[i].RemainingHours = out[i].EstimatedHours
		}
	}
	return out
}

func copySlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	return out
}
