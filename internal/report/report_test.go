package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qixiaoyu27/Fluent/internal/ledger"
)

func testHistory() []ledger.Entry {
	return []ledger.Entry{
		{Generation: 1, EvaluationID: "a", Status: "ok", Objective: 12},
		{Generation: 1, EvaluationID: "b", Status: "timeout"},
		{Generation: 1, EvaluationID: "c", Status: "ok", Objective: 15},
		{Generation: 2, EvaluationID: "d", Status: "ok", Objective: 14},
		{Generation: 2, EvaluationID: "e", Status: "process_failure"},
	}
}

func TestBestPerGeneration(t *testing.T) {
	generations, best := bestPerGeneration(testHistory())
	if len(generations) != 2 || generations[0] != 1 || generations[1] != 2 {
		t.Fatalf("generations = %v", generations)
	}
	if best[1] != 15 || best[2] != 14 {
		t.Fatalf("best = %v", best)
	}
}

func TestBestPerGenerationAllFailed(t *testing.T) {
	generations, _ := bestPerGeneration([]ledger.Entry{
		{Generation: 1, Status: "timeout"},
	})
	if len(generations) != 0 {
		t.Fatalf("expected no chartable generations, got %v", generations)
	}
}

func TestChartReporterWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	r, err := NewChartReporter(ChartConfig{
		Enabled:         true,
		OutputDir:       dir,
		FilenamePattern: "progress_gen%d.html",
	})
	if err != nil {
		t.Fatalf("NewChartReporter: %v", err)
	}

	if err := r.Update(2, testHistory()); err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "progress_gen2.html"))
	if err != nil {
		t.Fatalf("chart artifact missing: %v", err)
	}
	if !strings.Contains(string(data), "best objective") {
		t.Fatal("chart artifact missing series name")
	}
}

func TestChartReporterDisabledIsNoop(t *testing.T) {
	r, err := NewChartReporter(ChartConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewChartReporter: %v", err)
	}
	if err := r.Update(1, testHistory()); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestChartReporterRejectsBadPattern(t *testing.T) {
	_, err := NewChartReporter(ChartConfig{
		Enabled:         true,
		OutputDir:       t.TempDir(),
		FilenamePattern: "progress.html",
	})
	if err == nil {
		t.Fatal("expected pattern validation error")
	}
}

func TestLogReporter(t *testing.T) {
	var r LogReporter
	if err := r.Update(1, testHistory()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.Update(3, nil); err != nil {
		t.Fatalf("Update empty: %v", err)
	}
}
