package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Scenario is one independent training problem: a snapshot of items and
// slots the environment is instantiated over.
type Scenario struct {
	Items []WorkItem
	Slots []TimeSlot
}

// TrainingResult reports the outcome of a training run. Failure is reported,
// never raised: an untrained or missing artifact simply leaves the policy
// strategy on its fallback path.
type TrainingResult struct {
	Success      bool
	ArtifactPath string
	Episodes     int
	BestReward   float64
	Error        string
}

// Trainer produces a policy artifact from scenarios within an episode budget.
type Trainer interface {
	Train(ctx context.Context, scenarios []Scenario, budget int) TrainingResult
}

// CrossEntropyTrainer is a derivative-free policy search: each generation
// samples perturbed candidates around the current mean policy, evaluates each
// on every scenario, and recentres on the elite fraction. It honours the
// environment contract without committing to any particular gradient method.
type CrossEntropyTrainer struct {
	EnvCfg     EnvConfig
	Path       string
	Hidden     int
	Population int
	EliteCount int
	Noise      float64
	Seed       int64
	Logger     *zap.Logger
}

// NewCrossEntropyTrainer builds a trainer with sane defaults that persists
// the best policy to path.
func NewCrossEntropyTrainer(path string, envCfg EnvConfig, logger *zap.Logger) *CrossEntropyTrainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrossEntropyTrainer{
		EnvCfg:     envCfg.withDefaults(),
		Path:       path,
		Hidden:     32,
		Population: 24,
		EliteCount: 6,
		Noise:      0.1,
		Seed:       1,
		Logger:     logger,
	}
}

// Train runs the search until the episode budget is exhausted or the context
// is cancelled, then saves the best policy found so far.
func (t *CrossEntropyTrainer) Train(ctx context.Context, scenarios []Scenario, budget int) TrainingResult {
	if len(scenarios) == 0 {
		return TrainingResult{Success: false, Error: "no training scenarios provided"}
	}
	if budget <= 0 {
		budget = 10000
	}

	probe := NewEnvironment(scenarios[0].Items, scenarios[0].Slots, t.EnvCfg)
	inputs := probe.ObservationSize()
	outputs := probe.ActionSize()

	rng := rand.New(rand.NewSource(t.Seed))
	mean := NewRandomPolicy(inputs, t.Hidden, outputs, rng)

	type candidate struct {
		policy *Policy
		reward float64
	}

	best := mean.Clone()
	bestReward := t.evaluate(mean, scenarios)
	episodes := len(scenarios)

	for episodes < budget {
		if err := ctx.Err(); err != nil {
			break
		}

		candidates := make([]candidate, 0, t.Population)
		for i := 0; i < t.Population; i++ {
			perturbed := perturb(mean, t.Noise, rng)
			reward := t.evaluate(perturbed, scenarios)
			episodes += len(scenarios)
			candidates = append(candidates, candidate{policy: perturbed, reward: reward})
			if reward > bestReward {
				bestReward = reward
				best = perturbed.Clone()
			}
			if episodes >= budget {
				break
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].reward > candidates[j].reward
		})
		elite := t.EliteCount
		if elite > len(candidates) {
			elite = len(candidates)
		}
		if elite > 0 {
			elitePolicies := make([]*Policy, elite)
			for i := 0; i < elite; i++ {
				elitePolicies[i] = candidates[i].policy
			}
			mean = averagePolicies(elitePolicies)
		}
	}

	if err := best.Save(t.Path); err != nil {
		t.Logger.Error("failed to persist policy artifact", zap.Error(err))
		return TrainingResult{Success: false, Episodes: episodes, BestReward: bestReward, Error: err.Error()}
	}

	t.Logger.Info("policy training complete",
		zap.Int("episodes", episodes),
		zap.Float64("best_reward", bestReward),
		zap.String("artifact", t.Path),
	)
	return TrainingResult{Success: true, ArtifactPath: t.Path, Episodes: episodes, BestReward: bestReward}
}

// evaluate returns the mean episode reward of the policy across scenarios.
func (t *CrossEntropyTrainer) evaluate(policy *Policy, scenarios []Scenario) float64 {
	total := 0.0
	for _, scenario := range scenarios {
		env := NewEnvironment(scenario.Items, scenario.Slots, t.EnvCfg)
		obs := env.Reset()
		episode := 0.0
		budget := len(scenario.Items) * len(scenario.Slots)
		for step := 0; step < budget; step++ {
			result := env.Step(env.DecodeAction(policy.Predict(obs)))
			episode += result.Reward
			obs = result.Observation
			if result.Done {
				break
			}
		}
		total += episode
	}
	return total / float64(len(scenarios))
}

func perturb(p *Policy, noise float64, rng *rand.Rand) *Policy {
	out := p.Clone()
	for i := range out.W1 {
		for j := range out.W1[i] {
			out.W1[i][j] += rng.NormFloat64() * noise
		}
	}
	for i := range out.B1 {
		out.B1[i] += rng.NormFloat64() * noise
	}
	for i := range out.W2 {
		for j := range out.W2[i] {
			out.W2[i][j] += rng.NormFloat64() * noise
		}
	}
	for i := range out.B2 {
		out.B2[i] += rng.NormFloat64() * noise
	}
	return out
}

func averagePolicies(policies []*Policy) *Policy {
	out := policies[0].Clone()
	n := float64(len(policies))
	for i := range out.W1 {
		for j := range out.W1[i] {
			sum := 0.0
			for _, p := range policies {
				sum += p.W1[i][j]
			}
			out.W1[i][j] = sum / n
		}
	}
	for i := range out.B1 {
		sum := 0.0
		for _, p := range policies {
			sum += p.B1[i]
		}
		out.B1[i] = sum / n
	}
	for i := range out.W2 {
		for j := range out.W2[i] {
			sum := 0.0
			for _, p := range policies {
				sum += p.W2[i][j]
			}
			out.W2[i][j] = sum / n
		}
	}
	for i := range out.B2 {
		sum := 0.0
		for _, p := range policies {
			sum += p.B2[i]
		}
		out.B2[i] = sum / n
	}
	return out
}

// GenerateScenarios builds synthetic training problems: a three-week horizon
// of daily slots with a handful of items of varying size, deadline, priority
// and difficulty.
func GenerateScenarios(count int, now time.Time, rng *rand.Rand) []Scenario {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	scenarios := make([]Scenario, 0, count)
	for s := 0; s < count; s++ {
		nItems := 3 + rng.Intn(8)
		items := make([]WorkItem, 0, nItems)
		for i := 0; i < nItems; i++ {
			hours := 2 + rng.Float64()*13
			items = append(items, WorkItem{
				ID:             fmt.Sprintf("scenario-%d-item-%d", s, i),
				EstimatedHours: hours,
				RemainingHours: hours,
				DueAt:          now.AddDate(0, 0, 1+rng.Intn(21)),
				Priority:       Priority(1 + rng.Intn(3)),
				Difficulty:     Difficulty(1 + rng.Intn(3)),
			})
		}

		slots := make([]TimeSlot, 0)
		for day := 0; day < 21; day++ {
			perDay := 2 + rng.Intn(3)
			for j := 0; j < perDay; j++ {
				startHour := 8 + rng.Intn(13)
				duration := 1 + rng.Float64()*3
				start := now.AddDate(0, 0, day).Add(time.Duration(startHour) * time.Hour)
				slots = append(slots, TimeSlot{
					Start:         start,
					End:           start.Add(durationToTime(duration)),
					DurationHours: duration,
				})
			}
		}
		scenarios = append(scenarios, Scenario{Items: items, Slots: slots})
	}
	return scenarios
}
