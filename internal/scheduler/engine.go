package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// EngineConfig wires the engine's strategies.
type EngineConfig struct {
	Options    Options
	Env        EnvConfig
	PolicyPath string
}

// Engine is the schedule optimization entry point: it materialises time
// slots from availability rules and runs the selected strategy. It raises no
// errors of its own; an empty or partially covered schedule is a valid
// output.
type Engine struct {
	opts   Options
	greedy *GreedyScheduler
	policy *PolicyScheduler
	logger *zap.Logger
}

// NewEngine builds the engine with both strategies ready.
func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := cfg.Options.withDefaults()
	return &Engine{
		opts:   opts,
		greedy: NewGreedyScheduler(opts, logger),
		policy: NewPolicyScheduler(cfg.PolicyPath, opts, cfg.Env, logger),
	}
}

// GenerateSchedule expands the availability rules over the date range and
// allocates the work items with the requested strategy. The policy strategy
// silently degrades to greedy when no usable artifact exists.
func (e *Engine) GenerateSchedule(items []WorkItem, rules []AvailabilityRule, startDate, endDate time.Time, strategy Strategy, now time.Time) Schedule {
	slots := GenerateTimeSlots(rules, startDate, endDate)
	return e.ScheduleSlots(items, slots, strategy, now)
}

// ScheduleSlots runs the selected strategy over already materialised slots.
func (e *Engine) ScheduleSlots(items []WorkItem, slots []TimeSlot, strategy Strategy, now time.Time) Schedule {
	switch strategy {
	case StrategyPolicy:
		return e.policy.Schedule(items, slots, now)
	default:
		return e.greedy.Schedule(items, slots, now)
	}
}

// PolicyReady reports whether the learned strategy has a usable artifact.
func (e *Engine) PolicyReady() bool { return e.policy.Ready() }

// ReloadPolicy drops the memoized artifact, forcing a re-read on next use.
func (e *Engine) ReloadPolicy() { e.policy.Reload() }
