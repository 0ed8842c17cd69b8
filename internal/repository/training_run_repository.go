package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aptora/aptora-api/internal/models"
)

// TrainingRunRepository tracks policy training jobs.
type TrainingRunRepository struct {
	db *sqlx.DB
}

// NewTrainingRunRepository constructs a new repository.
func NewTrainingRunRepository(db *sqlx.DB) *TrainingRunRepository {
	return &TrainingRunRepository{db: db}
}

// Create inserts a queued run.
func (r *TrainingRunRepository) Create(ctx context.Context, run *models.TrainingRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.TrainingStatusQueued
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO training_runs (id, user_id, status, budget, scenarios, episodes, best_reward, artifact_path, error, created_at)
VALUES (:id, :user_id, :status, :budget, :scenarios, :episodes, :best_reward, :artifact_path, :error, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create training run: %w", err)
	}
	return nil
}

// Get fetches a run by id.
func (r *TrainingRunRepository) Get(ctx context.Context, id string) (*models.TrainingRun, error) {
	query := `SELECT id, user_id, status, budget, scenarios, episodes, best_reward, artifact_path, error, created_at, started_at, finished_at
FROM training_runs WHERE id = $1`
	var run models.TrainingRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get training run: %w", err)
	}
	return &run, nil
}

// MarkRunning transitions a queued run to running.
func (r *TrainingRunRepository) MarkRunning(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		"UPDATE training_runs SET status = $1, started_at = $2 WHERE id = $3",
		models.TrainingStatusRunning, now, id); err != nil {
		return fmt.Errorf("mark training run running: %w", err)
	}
	return nil
}

// Finish records the terminal state of a run.
func (r *TrainingRunRepository) Finish(ctx context.Context, run *models.TrainingRun) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	query := `UPDATE training_runs SET status = :status, episodes = :episodes, best_reward = :best_reward,
artifact_path = :artifact_path, error = :error, finished_at = :finished_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("finish training run: %w", err)
	}
	return nil
}
