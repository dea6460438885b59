// Command despot-demo runs one planning tick against internal/toymodel
// and prints the chosen action and root bounds, in the teacher's
// cmd/hive/main.go idiom: flag.*, klog.InitFlags, profilers.Setup/OnQuit.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/parameters"
	"github.com/mlindqvist/despot/internal/profilers"
	"github.com/mlindqvist/despot/internal/search"
	"github.com/mlindqvist/despot/internal/toymodel"
	"k8s.io/klog/v2"
)

var (
	flagScenario     = flag.String("scenario", "two-action", "Toy scenario to plan over: two-action, pruning or importance-sampling.")
	flagNoise        = flag.Float64("noise", 0, "Reward noise amplitude for the two-action scenario.")
	flagSearchDepth  = flag.Int("search_depth", 2, "Max V-node depth.")
	flagNumScenarios = flag.Int("num_scenarios", 64, "Number of particles sampled at the root.")
	flagTimePerMove  = flag.Duration("time_per_move", time.Second, "Wall-clock budget for the planning tick.")
	flagPruning      = flag.Float64("pruning_constant", 0, "L1 regularizer subtracted per expanded Q-node.")
	flagSeed         = flag.Int64("seed", 1, "Seed for particle sampling and scenario streams.")
	flagConfig       = flag.String("config", "", "Comma-separated key=value configuration string (internal/parameters format, "+
		"e.g. \"search_depth=5,num_scenarios=200,lower_bound=toy-rollout\"); when set, replaces the individual tuning flags above.")

	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	m, lowerBound := buildModel(*flagScenario)

	var cfg config.Config
	if *flagConfig != "" {
		var err error
		cfg, err = config.FromParams(parameters.NewFromConfigString(*flagConfig))
		if err != nil {
			klog.Fatalf("invalid -config=%q: %+v", *flagConfig, err)
		}
	} else {
		cfg = config.Default()
		cfg.SearchDepth = *flagSearchDepth
		cfg.NumScenarios = *flagNumScenarios
		cfg.TimePerMove = *flagTimePerMove
		cfg.PruningConstant = *flagPruning
		cfg.Discount = m.Discount()
		cfg.LowerBoundName = lowerBound
		cfg.UpperBoundName = "particle-upper"
	}

	planner, err := search.NewPlanner(m, cfg)
	if err != nil {
		klog.Fatalf("failed to build planner: %+v", err)
	}

	src := rand.New(rand.NewSource(*flagSeed))
	b := toymodel.InitialBelief(cfg.NumScenarios)

	result, err := planner.Search(globalCtx, b, src, cfg)
	if err != nil {
		klog.Fatalf("search failed: %+v", err)
	}

	fmt.Printf("scenario=%s %s\n", *flagScenario, result)
}

// buildModel returns the toy model named by scenario and the lower bound
// name it should be searched with ("toy-rollout" for the scenarios whose
// optimal action pays off more than one step out, "default-policy" for
// the single-step pruning toy).
func buildModel(scenario string) (*toymodel.Model, string) {
	switch scenario {
	case "two-action":
		return toymodel.NewTwoAction(*flagNoise), "toy-rollout"
	case "pruning":
		return toymodel.NewPruningToy(), "default-policy"
	case "importance-sampling":
		return toymodel.NewImportanceSamplingToy(), "toy-rollout"
	default:
		klog.Fatalf("unknown -scenario=%q: want two-action, pruning or importance-sampling", scenario)
		return nil, ""
	}
}
