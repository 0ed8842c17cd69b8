package models

import "time"

// StudySession is a persisted, concrete study block allocated to an
// assignment by the scheduling engine (or created manually by the user).
type StudySession struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	StartTime    time.Time  `db:"start_time" json:"start_time"`
	EndTime      time.Time  `db:"end_time" json:"end_time"`
	IsCompleted  bool       `db:"is_completed" json:"is_completed"`
	Notes        string     `db:"notes" json:"notes"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DurationHours derives the session length.
func (s StudySession) DurationHours() float64 {
	return s.EndTime.Sub(s.StartTime).Hours()
}
