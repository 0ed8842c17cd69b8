package scheduler

import (
	"time"
)

// Environment defaults; typical values land near [0,1] after these scalings.
// They are implementation constants, not part of the engine contract.
const (
	defaultMaxItems = 20
	defaultMaxSlots = 50

	hoursNormScale      = 20.0
	dueDaysNormScale    = 14.0
	ordinalNormScale    = 3.0
	capacityNormScale   = 4.0
	totalHoursNormScale = 100.0

	// A residual below this is treated as fully consumed.
	drainEpsilon = 0.1
)

// ActionKind discriminates environment actions.
type ActionKind int

const (
	// ActionSchedule allocates item Item into slot Slot.
	ActionSchedule ActionKind = iota
	// ActionSkip deliberately does nothing this step.
	ActionSkip
)

// Action is the tagged form of the environment's discrete action space. It is
// flattened to an integer only at the policy-inference boundary.
type Action struct {
	Kind ActionKind
	Item int
	Slot int
}

// Skip is the terminal no-op action.
func Skip() Action { return Action{Kind: ActionSkip} }

// ScheduleAction allocates item i into slot j.
func ScheduleAction(item, slot int) Action {
	return Action{Kind: ActionSchedule, Item: item, Slot: slot}
}

// RewardConfig holds the shaping coefficients. Their values are empirical
// tuning constants, kept configurable rather than hard-coded.
type RewardConfig struct {
	SkipPenalty         float64
	InvalidPenalty      float64
	CompletionBonus     float64
	LatePenalty         float64
	LastDayBonus        float64
	NearDeadlineBonus   float64
	EarlyBonus          float64
	HighPriorityBonus   float64
	MediumPriorityBonus float64
	GoodLengthBonus     float64
	ShortLengthPenalty  float64
	UtilizationBonus    float64
}

// DefaultRewardConfig returns the tuned shaping coefficients.
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		SkipPenalty:         -0.1,
		InvalidPenalty:      -1.0,
		CompletionBonus:     10.0,
		LatePenalty:         -10.0,
		LastDayBonus:        2.0,
		NearDeadlineBonus:   5.0,
		EarlyBonus:          3.0,
		HighPriorityBonus:   2.0,
		MediumPriorityBonus: 1.0,
		GoodLengthBonus:     1.0,
		ShortLengthPenalty:  -0.5,
		UtilizationBonus:    1.0,
	}
}

// EnvConfig sizes the environment and fixes its reference clock. A fixed Now
// keeps transitions exactly reproducible for identical inputs and actions.
type EnvConfig struct {
	MaxItems        int
	MaxSlots        int
	MaxSessionHours float64
	Reward          RewardConfig
	Now             time.Time
}

func (c EnvConfig) withDefaults() EnvConfig {
	if c.MaxItems <= 0 {
		c.MaxItems = defaultMaxItems
	}
	if c.MaxSlots <= 0 {
		c.MaxSlots = defaultMaxSlots
	}
	if c.MaxSessionHours <= 0 {
		c.MaxSessionHours = 3.0
	}
	if c.Reward == (RewardConfig{}) {
		c.Reward = DefaultRewardConfig()
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	return c
}

// Allocation is one entry of the environment's internal schedule log.
type Allocation struct {
	ItemIndex int
	ItemID    string
	SlotIndex int
	Start     time.Time
	Duration  float64
}

// StepResult reports one transition.
type StepResult struct {
	Observation []float64
	Reward      float64
	Done        bool
	Valid       bool
}

// Environment is a finite-horizon decision process over a fixed snapshot of
// work items and time slots. It performs no I/O and contains no randomness:
// identical inputs and action sequences reproduce identical transitions.
type Environment struct {
	cfg   EnvConfig
	items []WorkItem
	slots []TimeSlot

	remaining     []float64
	itemDone      []bool
	slotCapacity  []float64
	slotExhausted []bool

	totalScheduled float64
	completedItems int
	log            []Allocation

	step     int
	maxSteps int
}

// NewEnvironment snapshots up to MaxItems items and MaxSlots slots. The
// caller's slices are copied and never mutated.
func NewEnvironment(items []WorkItem, slots []TimeSlot, cfg EnvConfig) *Environment {
	cfg = cfg.withDefaults()
	if len(items) > cfg.MaxItems {
		items = items[:cfg.MaxItems]
	}
	if len(slots) > cfg.MaxSlots {
		slots = slots[:cfg.MaxSlots]
	}
	env := &Environment{
		cfg:   cfg,
		items: copyItems(items),
		slots: copySlots(slots),
	}
	env.Reset()
	return env
}

// Reset restores the initial state and returns the first observation.
func (e *Environment) Reset() []float64 {
	e.remaining = make([]float64, len(e.items))
	e.itemDone = make([]bool, len(e.items))
	e.slotCapacity = make([]float64, len(e.slots))
	e.slotExhausted = make([]bool, len(e.slots))
	for i, item := range e.items {
		e.remaining[i] = item.RemainingHours
	}
	for i, slot := range e.slots {
		e.slotCapacity[i] = slot.DurationHours
	}
	e.totalScheduled = 0
	e.completedItems = 0
	e.log = nil
	e.step = 0
	e.maxSteps = len(e.items) * 3
	return e.Observation()
}

// ObservationSize is the fixed state vector length.
func (e *Environment) ObservationSize() int {
	return e.cfg.MaxItems*5 + e.cfg.MaxSlots*2 + 2
}

// ActionSize is the flattened discrete action count including skip.
func (e *Environment) ActionSize() int {
	return e.cfg.MaxItems*e.cfg.MaxSlots + 1
}

// EncodeAction flattens an action to its discrete index.
func (e *Environment) EncodeAction(a Action) int {
	if a.Kind == ActionSkip {
		return e.cfg.MaxItems * e.cfg.MaxSlots
	}
	return a.Item*e.cfg.MaxSlots + a.Slot
}

// DecodeAction expands a discrete index into the tagged form. Indexes at or
// beyond the schedule range decode to skip.
func (e *Environment) DecodeAction(index int) Action {
	if index < 0 || index >= e.cfg.MaxItems*e.cfg.MaxSlots {
		return Skip()
	}
	return ScheduleAction(index/e.cfg.MaxSlots, index%e.cfg.MaxSlots)
}

// Observation builds the fixed-size state vector: per-item features, padded,
// then per-slot features, padded, then two global scalars.
func (e *Environment) Observation() []float64 {
	obs := make([]float64, 0, e.ObservationSize())
	for i := 0; i < e.cfg.MaxItems; i++ {
		if i < len(e.items) {
			item := e.items[i]
			daysUntilDue := item.DueAt.Sub(e.cfg.Now).Hours() / 24.0
			done := 0.0
			if e.itemDone[i] {
				done = 1.0
			}
			obs = append(obs,
				e.remaining[i]/hoursNormScale,
				daysUntilDue/dueDaysNormScale,
				float64(item.Priority)/ordinalNormScale,
				float64(item.Difficulty)/ordinalNormScale,
				done,
			)
		} else {
			obs = append(obs, 0, 0, 0, 0, 0)
		}
	}
	for i := 0; i < e.cfg.MaxSlots; i++ {
		if i < len(e.slots) {
			exhausted := 0.0
			if e.slotExhausted[i] {
				exhausted = 1.0
			}
			obs = append(obs, e.slotCapacity[i]/capacityNormScale, exhausted)
		} else {
			obs = append(obs, 0, 0)
		}
	}
	fraction := 0.0
	if len(e.items) > 0 {
		fraction = float64(e.completedItems) / float64(len(e.items))
	}
	obs = append(obs, e.totalScheduled/totalHoursNormScale, fraction)
	return obs
}

// Step applies one action. Skip and invalid actions change nothing but the
// step counter; a valid action allocates min(remaining, capacity, max
// session) hours and records it in the schedule log.
func (e *Environment) Step(action Action) StepResult {
	e.step++

	reward := 0.0
	valid := false

	switch {
	case action.Kind == ActionSkip:
		reward = e.cfg.Reward.SkipPenalty
	case e.invalid(action):
		reward = e.cfg.Reward.InvalidPenalty
	default:
		valid = true
		reward = e.apply(action)
	}

	return StepResult{
		Observation: e.Observation(),
		Reward:      reward,
		Done:        e.done(),
		Valid:       valid,
	}
}

// Steps reports how many steps have been taken since the last reset.
func (e *Environment) Steps() int { return e.step }

// Log returns the recorded allocations in the order they were made.
func (e *Environment) Log() []Allocation {
	out := make([]Allocation, len(e.log))
	copy(out, e.log)
	return out
}

// TotalScheduledHours reports hours allocated so far.
func (e *Environment) TotalScheduledHours() float64 { return e.totalScheduled }

// CompletedItems reports how many items are fully scheduled.
func (e *Environment) CompletedItems() int { return e.completedItems }

func (e *Environment) invalid(a Action) bool {
	if a.Item < 0 || a.Item >= len(e.items) {
		return true
	}
	if a.Slot < 0 || a.Slot >= len(e.slots) {
		return true
	}
	if e.remaining[a.Item] <= 0 {
		return true
	}
	if e.slotCapacity[a.Slot] <= 0 {
		return true
	}
	return false
}

func (e *Environment) apply(a Action) float64 {
	item := e.items[a.Item]
	slot := e.slots[a.Slot]

	duration := minFloat(e.remaining[a.Item], e.slotCapacity[a.Slot], e.cfg.MaxSessionHours)

	e.remaining[a.Item] -= duration
	e.slotCapacity[a.Slot] -= duration
	e.totalScheduled += duration

	completed := false
	if e.remaining[a.Item] <= drainEpsilon && !e.itemDone[a.Item] {
		e.itemDone[a.Item] = true
		e.completedItems++
		completed = true
	}
	if e.slotCapacity[a.Slot] <= drainEpsilon {
		e.slotExhausted[a.Slot] = true
	}

	e.log = append(e.log, Allocation{
		ItemIndex: a.Item,
		ItemID:    item.ID,
		SlotIndex: a.Slot,
		Start:     slot.Start,
		Duration:  duration,
	})

	return e.reward(item, slot, duration, completed)
}

func (e *Environment) reward(item WorkItem, slot TimeSlot, duration float64, completed bool) float64 {
	r := e.cfg.Reward
	reward := 0.0

	if completed {
		reward += r.CompletionBonus
	}

	// Deadline adherence: front-loading beats last-minute cramming, but a
	// few days before the deadline still scores best.
	daysBeforeDeadline := item.DueAt.Sub(slot.Start).Hours() / 24.0
	switch {
	case daysBeforeDeadline < 0:
		reward += r.LatePenalty
	case daysBeforeDeadline < 1:
		reward += r.LastDayBonus
	case daysBeforeDeadline < 3:
		reward += r.NearDeadlineBonus
	default:
		reward += r.EarlyBonus
	}

	switch item.Priority {
	case PriorityHigh:
		reward += r.HighPriorityBonus
	case PriorityMedium:
		reward += r.MediumPriorityBonus
	}

	if duration >= 1.0 && duration <= 3.0 {
		reward += r.GoodLengthBonus
	} else if duration < 0.5 {
		reward += r.ShortLengthPenalty
	}

	if slot.DurationHours > 0 && duration/slot.DurationHours > 0.7 {
		reward += r.UtilizationBonus
	}

	return reward
}

func (e *Environment) done() bool {
	if e.step >= e.maxSteps {
		return true
	}
	if len(e.items) > 0 && e.completedItems >= len(e.items) {
		return true
	}
	for _, capacity := range e.slotCapacity {
		if capacity > drainEpsilon {
			return false
		}
	}
	return true
}
