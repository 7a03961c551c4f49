package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/qixiaoyu27/Fluent/internal/config"
	"github.com/qixiaoyu27/Fluent/internal/ga"
	"github.com/qixiaoyu27/Fluent/internal/ledger"
	"github.com/qixiaoyu27/Fluent/internal/report"
	"github.com/qixiaoyu27/Fluent/internal/solver"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("FLUENT_CONFIG", "config.yaml"), "run configuration file")
	dbPath := flag.String("db", envOr("FLUENT_DB", "fluent_evals.db"), "evaluation ledger database")
	seed := flag.Int64("seed", 0, "random seed (overrides config; 0 = config or clock)")
	stub := flag.Bool("stub", false, "use the analytic stub evaluator instead of the solver")
	flag.Parse()

	loaded, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	store, err := ledger.Open(*dbPath)
	if err != nil {
		log.Fatalf("ledger error: %v", err)
	}
	defer store.Close()

	var evaluator solver.Evaluator
	if *stub {
		evaluator, err = solver.NewStubEvaluator(loaded.Set, loaded.Objective, nil)
	} else {
		evaluator, err = solver.NewCaseRunner(loaded.File.Solver, loaded.Set, loaded.Objective)
	}
	if err != nil {
		log.Fatalf("evaluator error: %v", err)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = loaded.File.Run.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	log.Printf("[GA] random seed %d", rngSeed)

	opt, err := ga.New(loaded.Set, loaded.File.Run.Config, evaluator, store, rand.New(rand.NewSource(rngSeed)))
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	opt.AddReporter(report.LogReporter{})
	chart, err := report.NewChartReporter(loaded.File.Report)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	opt.AddReporter(chart)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	best, err := opt.Run(ctx)
	if errors.Is(err, ga.ErrNoSuccessfulEvaluation) {
		log.Fatalf("run finished without a single successful evaluation; see ledger %s for failure details", *dbPath)
	}
	if err != nil {
		log.Fatalf("run aborted: %v", err)
	}

	printBest(best)
}

// #endregion main

// #region output

func printBest(best ga.Best) {
	fmt.Printf("best design (generation %d, evaluation %s):\n", best.Generation, best.EvaluationID)
	for _, name := range sortedKeys(best.Genes) {
		fmt.Printf("  %-24s %12.6f\n", name, best.Genes[name])
	}
	fmt.Printf("objective: %.6f\n", best.Objective)
	for _, name := range sortedKeys(best.Metrics) {
		fmt.Printf("  %-24s %12.6f\n", name, best.Metrics[name])
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
