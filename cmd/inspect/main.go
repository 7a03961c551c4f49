package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/qixiaoyu27/Fluent/internal/ledger"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the evaluation ledger database")
	last := flag.Int("last", 20, "show the N most recent evaluations")
	generation := flag.Int("generation", 0, "show a single generation in full")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/fluent_evals.db [--last N] [--generation G] [--json]")
		os.Exit(2)
	}

	store, err := ledger.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *generation > 0 {
		err = runGenerationMode(store, *generation, *jsonOut)
	} else {
		err = runSummaryMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region summary-mode

type generationSummary struct {
	Generation int     `json:"generation"`
	Evaluated  int     `json:"evaluated"`
	Failed     int     `json:"failed"`
	Best       float64 `json:"best,omitempty"`
	Mean       float64 `json:"mean,omitempty"`
}

// runSummaryMode prints one row per generation plus the most recent
// evaluations.
func runSummaryMode(store *ledger.Store, last int, jsonOut bool) error {
	entries, err := store.ReadAll()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("ledger is empty")
		return nil
	}

	summaries := summarize(entries)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	fmt.Printf("%-12s %-10s %-8s %-14s %-14s\n", "generation", "evaluated", "failed", "best", "mean")
	for _, s := range summaries {
		if s.Evaluated == s.Failed {
			fmt.Printf("%-12d %-10d %-8d %-14s %-14s\n", s.Generation, s.Evaluated, s.Failed, "-", "-")
			continue
		}
		fmt.Printf("%-12d %-10d %-8d %-14.6f %-14.6f\n", s.Generation, s.Evaluated, s.Failed, s.Best, s.Mean)
	}

	if last > len(entries) {
		last = len(entries)
	}
	fmt.Printf("\nlast %d evaluations:\n", last)
	for _, e := range entries[len(entries)-last:] {
		printEntry(e)
	}
	return nil
}

func summarize(entries []ledger.Entry) []generationSummary {
	byGen := make(map[int]*generationSummary)
	var order []int
	for _, e := range entries {
		s, ok := byGen[e.Generation]
		if !ok {
			s = &generationSummary{Generation: e.Generation, Best: math.Inf(-1)}
			byGen[e.Generation] = s
			order = append(order, e.Generation)
		}
		s.Evaluated++
		if !e.OK() {
			s.Failed++
			continue
		}
		if e.Objective > s.Best {
			s.Best = e.Objective
		}
		s.Mean += e.Objective
	}
	summaries := make([]generationSummary, 0, len(order))
	for _, g := range order {
		s := byGen[g]
		if n := s.Evaluated - s.Failed; n > 0 {
			s.Mean /= float64(n)
		} else {
			s.Best = 0
			s.Mean = 0
		}
		summaries = append(summaries, *s)
	}
	return summaries
}

// #endregion summary-mode

// #region generation-mode

// runGenerationMode lists every evaluation of one generation.
func runGenerationMode(store *ledger.Store, generation int, jsonOut bool) error {
	entries, err := store.Generation(generation)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entries for generation %d", generation)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		printEntry(e)
	}
	return nil
}

func printEntry(e ledger.Entry) {
	if e.OK() {
		fmt.Printf("  gen %-4d %-10s %-16s objective=%.6f genes=%v\n",
			e.Generation, e.EvaluationID, e.Status, e.Objective, e.Genes)
		return
	}
	fmt.Printf("  gen %-4d %-10s %-16s detail=%s\n",
		e.Generation, e.EvaluationID, e.Status, e.Detail)
}

// #endregion generation-mode
