// Command strategy_compare runs the greedy and policy strategies over the
// same randomly generated scenarios and reports how they differ. Useful for
// sanity-checking a freshly trained policy artifact before promoting it.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/aptora/aptora-api/internal/scheduler"
)

type comparison struct {
	Scenario    int
	GreedyHours float64
	PolicyHours float64
	GreedyItems int
	PolicyItems int
	HoursDelta  float64
	Regression  bool
}

func main() {
	var (
		policyPath string
		scenarios  int
		seed       int64
		tolerance  float64
	)

	flag.StringVar(&policyPath, "policy", "./models/policy.json", "Path to the policy artifact")
	flag.IntVar(&scenarios, "scenarios", 20, "Number of random scenarios to compare")
	flag.Int64Var(&seed, "seed", 1, "Scenario generation seed")
	flag.Float64Var(&tolerance, "tolerance", 0.8, "Minimum acceptable policy/greedy hours ratio")
	flag.Parse()

	engine := scheduler.NewEngine(scheduler.EngineConfig{PolicyPath: policyPath}, nil)
	if !engine.PolicyReady() {
		log.Fatalf("no usable policy artifact at %s", policyPath)
	}

	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(seed))
	generated := scheduler.GenerateScenarios(scenarios, now, rng)

	var (
		comparisons []comparison
		regressions int
	)
	for i, scenario := range generated {
		greedy := engine.ScheduleSlots(scenario.Items, scenario.Slots, scheduler.StrategyGreedy, now)
		policy := engine.ScheduleSlots(scenario.Items, scenario.Slots, scheduler.StrategyPolicy, now)

		comp := comparison{
			Scenario:    i + 1,
			GreedyHours: greedy.TotalHoursScheduled,
			PolicyHours: policy.TotalHoursScheduled,
			GreedyItems: len(greedy.CoveredItemIDs),
			PolicyItems: len(policy.CoveredItemIDs),
			HoursDelta:  policy.TotalHoursScheduled - greedy.TotalHoursScheduled,
		}
		if greedy.TotalHoursScheduled > 0 && policy.TotalHoursScheduled/greedy.TotalHoursScheduled < tolerance {
			comp.Regression = true
			regressions++
		}
		comparisons = append(comparisons, comp)
	}

	fmt.Printf("%-9s %12s %12s %8s %8s %9s %s\n", "scenario", "greedy(h)", "policy(h)", "g-items", "p-items", "delta(h)", "flag")
	for _, comp := range comparisons {
		flagged := ""
		if comp.Regression {
			flagged = "REGRESSION"
		}
		fmt.Printf("%-9d %12.1f %12.1f %8d %8d %+9.1f %s\n",
			comp.Scenario, comp.GreedyHours, comp.PolicyHours, comp.GreedyItems, comp.PolicyItems, comp.HoursDelta, flagged)
	}

	fmt.Printf("\n%d/%d scenarios below %.0f%% of greedy hours\n", regressions, len(comparisons), tolerance*100)
	if regressions > 0 {
		os.Exit(1)
	}
}
