package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenerateTimeSlots expands recurring availability rules into concrete dated
// slots between startDate and endDate inclusive (date-only granularity).
// Each calendar day is visited once; every rule matching its weekday becomes
// one slot. Rules with end <= start are expected to be rejected upstream and
// are skipped here.
func GenerateTimeSlots(rules []AvailabilityRule, startDate, endDate time.Time) []TimeSlot {
	slots := make([]TimeSlot, 0)
	if endDate.Before(startDate) {
		return slots
	}

	byDay := make(map[int][]AvailabilityRule)
	for _, rule := range rules {
		byDay[rule.DayOfWeek] = append(byDay[rule.DayOfWeek], rule)
	}

	day := truncateToDay(startDate)
	last := truncateToDay(endDate)
	for !day.After(last) {
		for _, rule := range byDay[mondayIndexed(day.Weekday())] {
			startHour, startMin, err := parseClock(rule.StartTime)
			if err != nil {
				continue
			}
			endHour, endMin, err := parseClock(rule.EndTime)
			if err != nil {
				continue
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, day.Location())
			end := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, day.Location())
			if !end.After(start) {
				continue
			}
			slots = append(slots, TimeSlot{
				Start:         start,
				End:           end,
				DurationHours: end.Sub(start).Hours(),
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return slots
}

// Validate checks the rule's weekday, clock strings and ordering.
func (r AvailabilityRule) Validate() error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("day of week %d out of range", r.DayOfWeek)
	}
	startHour, startMin, err := parseClock(r.StartTime)
	if err != nil {
		return err
	}
	endHour, endMin, err := parseClock(r.EndTime)
	if err != nil {
		return err
	}
	if endHour*60+endMin <= startHour*60+startMin {
		return fmt.Errorf("end time %s must follow start time %s", r.EndTime, r.StartTime)
	}
	return nil
}

// mondayIndexed converts Go's Sunday-first weekday to the 0=Monday..6=Sunday
// convention used by availability rules.
func mondayIndexed(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func parseClock(raw string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock hour %q", raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock minute %q", raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock value %q out of range", raw)
	}
	return hour, minute, nil
}
