package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	"github.com/aptora/aptora-api/internal/scheduler"
)

type mockRunStore struct {
	mu   sync.Mutex
	runs map[string]models.TrainingRun
	seq  int
}

func (m *mockRunStore) Create(ctx context.Context, run *models.TrainingRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = make(map[string]models.TrainingRun)
	}
	m.seq++
	if run.ID == "" {
		run.ID = "run-1"
	}
	m.runs[run.ID] = *run
	return nil
}

func (m *mockRunStore) Get(ctx context.Context, id string) (*models.TrainingRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[id]; ok {
		return &run, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRunStore) MarkRunning(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := m.runs[id]
	run.Status = models.TrainingStatusRunning
	m.runs[id] = run
	return nil
}

func (m *mockRunStore) Finish(ctx context.Context, run *models.TrainingRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

type mockTrainer struct {
	result scheduler.TrainingResult
}

func (m *mockTrainer) Train(ctx context.Context, scenarios []scheduler.Scenario, budget int) scheduler.TrainingResult {
	return m.result
}

type mockReloader struct {
	mu      sync.Mutex
	reloads int
}

func (m *mockReloader) ReloadPolicy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads++
}

func (m *mockReloader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloads
}

func waitForTerminal(t *testing.T, svc *TrainingService, id string) *models.TrainingRun {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		run, err := svc.Status(context.Background(), id)
		require.NoError(t, err)
		if run.Terminal() {
			return run
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("training run never finished")
	return nil
}

func TestTrainingServiceRunSucceeds(t *testing.T) {
	store := &mockRunStore{}
	reloader := &mockReloader{}
	svc := NewTrainingService(store, &mockTrainer{result: scheduler.TrainingResult{
		Success:      true,
		ArtifactPath: "./models/policy.json",
		Episodes:     120,
		BestReward:   42.5,
	}}, reloader, nil, TrainingConfig{Enabled: true}, nil, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	run, err := svc.Enqueue(context.Background(), "user-1", dto.TrainRequest{Budget: 100, Scenarios: 4})
	require.NoError(t, err)
	require.Equal(t, models.TrainingStatusQueued, run.Status)

	final := waitForTerminal(t, svc, run.ID)
	assert.Equal(t, models.TrainingStatusSucceeded, final.Status)
	assert.Equal(t, 120, final.Episodes)
	assert.InDelta(t, 42.5, final.BestReward, 1e-9)
	assert.Equal(t, 1, reloader.count())
}

func TestTrainingServiceRunFails(t *testing.T) {
	store := &mockRunStore{}
	reloader := &mockReloader{}
	svc := NewTrainingService(store, &mockTrainer{result: scheduler.TrainingResult{
		Success: false,
		Error:   "no training scenarios provided",
	}}, reloader, nil, TrainingConfig{Enabled: true}, nil, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	run, err := svc.Enqueue(context.Background(), "user-1", dto.TrainRequest{})
	require.NoError(t, err)

	final := waitForTerminal(t, svc, run.ID)
	assert.Equal(t, models.TrainingStatusFailed, final.Status)
	assert.NotEmpty(t, final.Error)
	assert.Zero(t, reloader.count())
}

func TestTrainingServiceDisabled(t *testing.T) {
	svc := NewTrainingService(&mockRunStore{}, &mockTrainer{}, &mockReloader{}, nil, TrainingConfig{Enabled: false}, nil, nil)

	_, err := svc.Enqueue(context.Background(), "user-1", dto.TrainRequest{})
	require.Error(t, err)
}

func TestTrainingServiceStatusNotFound(t *testing.T) {
	svc := NewTrainingService(&mockRunStore{}, &mockTrainer{}, &mockReloader{}, nil, TrainingConfig{Enabled: true}, nil, nil)

	_, err := svc.Status(context.Background(), "run-missing")
	require.Error(t, err)
}
