package service

import (
	"context"
	"database/sql"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	"github.com/aptora/aptora-api/internal/scheduler"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
	"github.com/aptora/aptora-api/pkg/jobs"
)

type trainingRunStore interface {
	Create(ctx context.Context, run *models.TrainingRun) error
	Get(ctx context.Context, id string) (*models.TrainingRun, error)
	MarkRunning(ctx context.Context, id string) error
	Finish(ctx context.Context, run *models.TrainingRun) error
}

type policyReloader interface {
	ReloadPolicy()
}

// TrainingConfig tunes training job defaults.
type TrainingConfig struct {
	Enabled       bool
	Workers       int
	DefaultBudget int
	ScenarioCount int
}

// TrainingService runs policy training asynchronously and tracks run state.
type TrainingService struct {
	runs      trainingRunStore
	trainer   scheduler.Trainer
	engine    policyReloader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TrainingConfig
	queue     *jobs.Queue
	now       func() time.Time
}

// NewTrainingService constructs a TrainingService. Call Start before
// enqueueing runs and Stop on shutdown.
func NewTrainingService(runs trainingRunStore, trainer scheduler.Trainer, engine policyReloader, metrics *MetricsService, cfg TrainingConfig, validate *validator.Validate, logger *zap.Logger) *TrainingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DefaultBudget <= 0 {
		cfg.DefaultBudget = 2000
	}
	if cfg.ScenarioCount <= 0 {
		cfg.ScenarioCount = 20
	}
	s := &TrainingService{
		runs:      runs,
		trainer:   trainer,
		engine:    engine,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.queue = jobs.NewQueue("policy-training", s.handleJob, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the training workers.
func (s *TrainingService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the training workers.
func (s *TrainingService) Stop() {
	s.queue.Stop()
}

// Enqueue registers a new training run and schedules it for execution.
func (s *TrainingService) Enqueue(ctx context.Context, userID string, req dto.TrainRequest) (*models.TrainingRun, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.ErrTrainingDisabled
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training request")
	}
	budget := req.Budget
	if budget <= 0 {
		budget = s.cfg.DefaultBudget
	}
	scenarios := req.Scenarios
	if scenarios <= 0 {
		scenarios = s.cfg.ScenarioCount
	}

	run := &models.TrainingRun{
		UserID:    userID,
		Status:    models.TrainingStatusQueued,
		Budget:    budget,
		Scenarios: scenarios,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record training run")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: run.ID, Type: "train-policy", Payload: run.ID}); err != nil {
		run.Status = models.TrainingStatusFailed
		run.Error = "queue unavailable"
		_ = s.runs.Finish(ctx, run)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue training run")
	}
	return run, nil
}

// Status returns the current state of a run.
func (s *TrainingService) Status(ctx context.Context, id string) (*models.TrainingRun, error) {
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training run")
	}
	return run, nil
}

func (s *TrainingService) handleJob(ctx context.Context, job jobs.Job) error {
	id, _ := job.Payload.(string)
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		s.logger.Error("training run vanished", zap.String("run_id", id), zap.Error(err))
		return nil
	}
	if err := s.runs.MarkRunning(ctx, run.ID); err != nil {
		s.logger.Warn("failed to mark training run running", zap.String("run_id", run.ID), zap.Error(err))
	}

	started := s.now()
	rng := rand.New(rand.NewSource(started.UnixNano()))
	scenarios := scheduler.GenerateScenarios(run.Scenarios, started, rng)
	result := s.trainer.Train(ctx, scenarios, run.Budget)

	run.Episodes = result.Episodes
	run.BestReward = result.BestReward
	run.ArtifactPath = result.ArtifactPath
	if result.Success {
		run.Status = models.TrainingStatusSucceeded
		s.engine.ReloadPolicy()
		s.metrics.ObserveTrainingRun(time.Since(started), nil)
	} else {
		run.Status = models.TrainingStatusFailed
		run.Error = result.Error
		s.metrics.ObserveTrainingRun(time.Since(started), appErrors.ErrInternal)
	}
	if err := s.runs.Finish(ctx, run); err != nil {
		s.logger.Error("failed to finalise training run", zap.String("run_id", run.ID), zap.Error(err))
	}
	s.logger.Info("training run finished",
		zap.String("run_id", run.ID),
		zap.String("status", run.Status),
		zap.Int("episodes", run.Episodes),
		zap.Float64("best_reward", run.BestReward))
	return nil
}
