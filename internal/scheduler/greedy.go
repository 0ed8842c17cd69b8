package scheduler

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// GreedyScheduler is the deterministic constructive strategy and the
// mandatory fallback target: it always succeeds, possibly with partial
// coverage.
type GreedyScheduler struct {
	opts   Options
	logger *zap.Logger
}

// NewGreedyScheduler builds the greedy strategy with session bounds.
func NewGreedyScheduler(opts Options, logger *zap.Logger) *GreedyScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GreedyScheduler{opts: opts.withDefaults(), logger: logger}
}

// Schedule allocates items into slots in a single constructive pass.
// Items are consumed in descending score order (ties: earlier due date, then
// id); slots are consumed in ascending start order. Inputs are copied, never
// mutated.
func (g *GreedyScheduler) Schedule(items []WorkItem, slots []TimeSlot, now time.Time) Schedule {
	if len(items) == 0 || len(slots) == 0 {
		return newSchedule(nil)
	}

	queue := copyItems(items)
	capacity := copySlots(slots)

	sort.SliceStable(queue, func(i, j int) bool {
		si, sj := Score(queue[i], now), Score(queue[j], now)
		if si != sj {
			return si > sj
		}
		if !queue[i].DueAt.Equal(queue[j].DueAt) {
			return queue[i].DueAt.Before(queue[j].DueAt)
		}
		return queue[i].ID < queue[j].ID
	})
	sort.SliceStable(capacity, func(i, j int) bool {
		return capacity[i].Start.Before(capacity[j].Start)
	})

	sessions := make([]ScheduledSession, 0)
	for idx := range queue {
		item := &queue[idx]
		// Re-scan the slot list until the item is fully placed or a whole
		// pass makes no progress; a partially consumed slot stays usable.
		for item.RemainingHours > 0 {
			progressed := false
			for s := range capacity {
				if item.RemainingHours <= 0 {
					break
				}
				slot := &capacity[s]
				if slot.DurationHours <= 0 {
					continue
				}

				duration := minFloat(item.RemainingHours, slot.DurationHours, g.opts.MaxSessionHours)
				if duration < g.opts.MinSessionHours {
					continue
				}

				start := slot.Start
				end := start.Add(durationToTime(duration))
				sessions = append(sessions, ScheduledSession{
					WorkItemID:    item.ID,
					Start:         start,
					End:           end,
					DurationHours: duration,
					Notes:         sessionNote(item.Title, duration),
				})

				item.RemainingHours -= duration
				slot.DurationHours -= duration
				slot.Start = end
				if slot.DurationHours <= 0 {
					slot.Used = true
				}
				progressed = true
			}
			if !progressed {
				break
			}
		}
	}

	schedule := newSchedule(sessions)
	g.logger.Debug("greedy schedule built",
		zap.Int("items", len(items)),
		zap.Int("slots", len(slots)),
		zap.Int("sessions", len(schedule.Sessions)),
		zap.Float64("hours", schedule.TotalHoursScheduled),
	)
	return schedule
}

func sessionNote(title string, duration float64) string {
	if title == "" {
		return fmt.Sprintf("Study session (%.1fh)", duration)
	}
	return fmt.Sprintf("Study session for %s (%.1fh)", title, duration)
}

func durationToTime(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

func minFloat(values ...float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
