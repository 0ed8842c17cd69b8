package models

import "time"

const (
	TrainingStatusQueued    = "queued"
	TrainingStatusRunning   = "running"
	TrainingStatusSucceeded = "succeeded"
	TrainingStatusFailed    = "failed"
)

// TrainingRun tracks one policy training job from enqueue to completion.
type TrainingRun struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	Status       string     `db:"status" json:"status"`
	Budget       int        `db:"budget" json:"budget"`
	Scenarios    int        `db:"scenarios" json:"scenarios"`
	Episodes     int        `db:"episodes" json:"episodes"`
	BestReward   float64    `db:"best_reward" json:"best_reward"`
	ArtifactPath string     `db:"artifact_path" json:"artifact_path,omitempty"`
	Error        string     `db:"error" json:"error,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	StartedAt    *time.Time `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// Terminal reports whether the run has reached a final state.
func (r TrainingRun) Terminal() bool {
	return r.Status == TrainingStatusSucceeded || r.Status == TrainingStatusFailed
}
