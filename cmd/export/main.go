package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qixiaoyu27/Fluent/internal/ledger"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the evaluation ledger database")
	outPath := flag.String("out", "", "CSV output file (appended to if it exists)")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: export --db path/to/fluent_evals.db --out history.csv")
		os.Exit(2)
	}

	if err := run(*dbPath, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// run writes the full ledger as CSV. Exporting into an existing file
// appends rows without repeating the header.
func run(dbPath, outPath string) error {
	store, err := ledger.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ReadAll()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("ledger %s is empty", dbPath)
	}

	writeHeader := true
	if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
		writeHeader = false
	}

	f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	vars := ledger.VariableColumns(entries)
	metrics := ledger.MetricColumns(entries)
	if err := ledger.ExportCSV(f, entries, vars, metrics, writeHeader); err != nil {
		return err
	}

	fmt.Printf("exported %d evaluations to %s\n", len(entries), outPath)
	return nil
}

// #endregion export
