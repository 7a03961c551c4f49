package report

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/qixiaoyu27/Fluent/internal/ledger"
)

// #region reporter

// Reporter consumes per-generation snapshots of the evaluation history.
// Reporters are best-effort sinks: the optimizer logs their errors and
// keeps going.
type Reporter interface {
	Update(generation int, history []ledger.Entry) error
}

// #endregion reporter

// #region log-reporter

// LogReporter prints a one-line summary of each generation.
type LogReporter struct{}

// Update logs best/mean objective and failure count for the generation.
func (LogReporter) Update(generation int, history []ledger.Entry) error {
	best := math.Inf(-1)
	var sum float64
	var evaluated, succeeded int
	for _, e := range history {
		if e.Generation != generation {
			continue
		}
		evaluated++
		if !e.OK() {
			continue
		}
		succeeded++
		sum += e.Objective
		if e.Objective > best {
			best = e.Objective
		}
	}

	if succeeded == 0 {
		log.Printf("[REPORT] generation %d: evaluated=%d failed=%d (no successful evaluation)",
			generation, evaluated, evaluated)
		return nil
	}
	log.Printf("[REPORT] generation %d: best=%.6f mean=%.6f evaluated=%d failed=%d",
		generation, best, sum/float64(succeeded), evaluated, evaluated-succeeded)
	return nil
}

// #endregion log-reporter

// #region chart-config

// ChartConfig controls the progress chart artifacts.
type ChartConfig struct {
	Enabled bool `yaml:"enabled"`
	// OutputDir receives one chart file per generation.
	OutputDir string `yaml:"output_dir"`
	// FilenamePattern must contain a single %d verb for the generation
	// number, e.g. "progress_gen%d.html".
	FilenamePattern string `yaml:"filename_pattern"`
}

// #endregion chart-config

// #region chart-reporter

// ChartReporter renders the best objective per generation as a line chart
// artifact after every generation.
type ChartReporter struct {
	cfg ChartConfig
}

// NewChartReporter validates the configuration and prepares the output
// directory.
func NewChartReporter(cfg ChartConfig) (*ChartReporter, error) {
	if !cfg.Enabled {
		return &ChartReporter{cfg: cfg}, nil
	}
	if cfg.FilenamePattern == "" {
		cfg.FilenamePattern = "progress_gen%d.html"
	}
	if !strings.Contains(cfg.FilenamePattern, "%d") {
		return nil, fmt.Errorf("chart reporter: filename_pattern %q needs a %%d verb", cfg.FilenamePattern)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("chart reporter: create output dir: %w", err)
	}
	return &ChartReporter{cfg: cfg}, nil
}

// Update writes the chart for everything evaluated so far.
func (r *ChartReporter) Update(generation int, history []ledger.Entry) error {
	if !r.cfg.Enabled {
		return nil
	}

	generations, best := bestPerGeneration(history)
	if len(generations) == 0 {
		return nil
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Optimization progress through generation %d", generation),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "generation"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "best objective"}),
	)

	labels := make([]string, len(generations))
	points := make([]opts.LineData, len(generations))
	for i, g := range generations {
		labels[i] = strconv.Itoa(g)
		points[i] = opts.LineData{Value: best[g]}
	}
	line.SetXAxis(labels).AddSeries("best objective", points)

	path := filepath.Join(r.cfg.OutputDir, fmt.Sprintf(r.cfg.FilenamePattern, generation))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart reporter: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("chart reporter: render: %w", err)
	}
	log.Printf("[REPORT] wrote progress chart %s", path)
	return nil
}

// bestPerGeneration reduces the history to the best successful objective
// per generation, skipping generations where everything failed.
func bestPerGeneration(history []ledger.Entry) ([]int, map[int]float64) {
	best := make(map[int]float64)
	for _, e := range history {
		if !e.OK() {
			continue
		}
		if cur, ok := best[e.Generation]; !ok || e.Objective > cur {
			best[e.Generation] = e.Objective
		}
	}
	generations := make([]int, 0, len(best))
	for g := range best {
		generations = append(generations, g)
	}
	sort.Ints(generations)
	return generations, best
}

// #endregion chart-reporter
