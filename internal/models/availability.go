package models

import (
	"time"

	"github.com/aptora/aptora-api/internal/scheduler"
)

// AvailabilitySlot is a recurring weekly study window for a user.
// DayOfWeek uses 0=Monday..6=Sunday; times are local clock strings "HH:MM".
type AvailabilitySlot struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	DayOfWeek int        `db:"day_of_week" json:"day_of_week"`
	StartTime string     `db:"start_time" json:"start_time"`
	EndTime   string     `db:"end_time" json:"end_time"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Rule converts the row into the engine's value type.
func (s AvailabilitySlot) Rule() scheduler.AvailabilityRule {
	return scheduler.AvailabilityRule{
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}
