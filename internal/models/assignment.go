package models

import (
	"time"

	"github.com/aptora/aptora-api/internal/scheduler"
)

// Assignment is a graded piece of coursework the student still has to do.
// EstimatedHours may already be adjusted by the external time-estimation
// model before it reaches the scheduling engine.
type Assignment struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	CourseID       string     `db:"course_id" json:"course_id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	DueDate        time.Time  `db:"due_date" json:"due_date"`
	EstimatedHours float64    `db:"estimated_hours" json:"estimated_hours"`
	Priority       string     `db:"priority" json:"priority"`
	Difficulty     string     `db:"difficulty" json:"difficulty"`
	IsCompleted    bool       `db:"is_completed" json:"is_completed"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// WorkItem converts the row into the engine's value type.
func (a Assignment) WorkItem() scheduler.WorkItem {
	return scheduler.WorkItem{
		ID:             a.ID,
		Title:          a.Title,
		EstimatedHours: a.EstimatedHours,
		RemainingHours: a.EstimatedHours,
		DueAt:          a.DueDate,
		Priority:       scheduler.ParsePriority(a.Priority),
		Difficulty:     scheduler.ParseDifficulty(a.Difficulty),
	}
}
