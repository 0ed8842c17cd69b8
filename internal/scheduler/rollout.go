package scheduler

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PolicyScheduler drives a trained policy through the environment. Any
// failure along the way (missing or corrupt artifact, rollout panic) falls
// back to the greedy strategy: callers always receive a Schedule, never an
// error.
type PolicyScheduler struct {
	opts   Options
	envCfg EnvConfig
	path   string
	logger *zap.Logger
	greedy *GreedyScheduler

	mu       sync.Mutex
	policy   *Policy
	loadOnce bool
}

// NewPolicyScheduler builds the policy strategy with its fallback. The
// artifact at path is loaded lazily and memoized; path may point at a file
// that does not exist yet.
func NewPolicyScheduler(path string, opts Options, envCfg EnvConfig, logger *zap.Logger) *PolicyScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyScheduler{
		opts:   opts.withDefaults(),
		envCfg: envCfg,
		path:   path,
		logger: logger,
		greedy: NewGreedyScheduler(opts, logger),
	}
}

// Reload drops the memoized artifact so the next call re-reads it. Used after
// a training run replaces the file.
func (s *PolicyScheduler) Reload() {
	s.mu.Lock()
	s.policy = nil
	s.loadOnce = false
	s.mu.Unlock()
}

// Ready reports whether a usable policy artifact is loaded.
func (s *PolicyScheduler) Ready() bool {
	return s.load() != nil
}

// Schedule produces a schedule via policy rollout, delegating to the greedy
// strategy whenever the policy is unavailable or the rollout fails.
func (s *PolicyScheduler) Schedule(items []WorkItem, slots []TimeSlot, now time.Time) Schedule {
	policy := s.load()
	if policy == nil {
		s.logger.Warn("policy artifact unavailable, using greedy fallback", zap.String("path", s.path))
		return s.greedy.Schedule(items, slots, now)
	}

	schedule, err := s.rollout(policy, items, slots, now)
	if err != nil {
		s.logger.Error("policy rollout failed, using greedy fallback", zap.Error(err))
		return s.greedy.Schedule(items, slots, now)
	}
	return schedule
}

func (s *PolicyScheduler) load() *Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadOnce {
		return s.policy
	}
	s.loadOnce = true
	policy, err := LoadPolicy(s.path)
	if err != nil {
		s.logger.Warn("failed to load policy artifact", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	s.policy = policy
	s.logger.Info("loaded policy artifact", zap.String("path", s.path))
	return s.policy
}

func (s *PolicyScheduler) rollout(policy *Policy, items []WorkItem, slots []TimeSlot, now time.Time) (schedule Schedule, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rollout panic: %v", r)
		}
	}()

	cfg := s.envCfg
	cfg.Now = now
	cfg.MaxSessionHours = s.opts.MaxSessionHours
	env := NewEnvironment(items, slots, cfg)

	if policy.Inputs != env.ObservationSize() || policy.Outputs != env.ActionSize() {
		return Schedule{}, fmt.Errorf("policy shape mismatch: artifact %dx%d, environment %dx%d",
			policy.Inputs, policy.Outputs, env.ObservationSize(), env.ActionSize())
	}

	obs := env.Reset()
	budget := len(items) * len(slots)
	for step := 0; step < budget; step++ {
		action := env.DecodeAction(policy.Predict(obs))
		result := env.Step(action)
		obs = result.Observation
		if result.Done {
			break
		}
	}

	sessions := make([]ScheduledSession, 0, len(env.Log()))
	itemTitles := make(map[string]string, len(items))
	for _, item := range items {
		itemTitles[item.ID] = item.Title
	}
	for _, alloc := range env.Log() {
		end := alloc.Start.Add(durationToTime(alloc.Duration))
		sessions = append(sessions, ScheduledSession{
			WorkItemID:    alloc.ItemID,
			Start:         alloc.Start,
			End:           end,
			DurationHours: alloc.Duration,
			Notes:         sessionNote(itemTitles[alloc.ItemID], alloc.Duration),
		})
	}

	schedule = newSchedule(sessions)
	s.logger.Info("policy rollout complete",
		zap.Int("steps", env.Steps()),
		zap.Int("sessions", len(schedule.Sessions)),
		zap.Float64("hours", schedule.TotalHoursScheduled),
	)
	return schedule, nil
}
