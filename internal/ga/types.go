package ga

import (
	"errors"
	"fmt"

	"github.com/qixiaoyu27/Fluent/internal/design"
)

// #region config

// Config holds the genetic algorithm parameters. All bounds are enforced
// at startup, before any evaluation runs.
type Config struct {
	PopulationSize int     `yaml:"population_size" validate:"gt=0"`
	Generations    int     `yaml:"generations" validate:"gt=0"`
	CrossoverRate  float64 `yaml:"crossover_rate" validate:"gte=0,lte=1"`
	MutationRate   float64 `yaml:"mutation_rate" validate:"gte=0,lte=1"`
	MutationSigma  float64 `yaml:"mutation_sigma" validate:"gte=0"`
	TournamentSize int     `yaml:"tournament_size"`
	Elitism        int     `yaml:"elitism"`
}

// Validate checks the parameter ranges, including the cross-field bounds
// the struct tags cannot express.
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("ga config: population_size must be positive")
	}
	if c.Generations <= 0 {
		return fmt.Errorf("ga config: generations must be positive")
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("ga config: crossover_rate %g outside [0, 1]", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("ga config: mutation_rate %g outside [0, 1]", c.MutationRate)
	}
	if c.MutationSigma < 0 {
		return fmt.Errorf("ga config: mutation_sigma must not be negative")
	}
	if c.TournamentSize < 2 || c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("ga config: tournament_size %d outside [2, %d]", c.TournamentSize, c.PopulationSize)
	}
	if c.Elitism < 0 || c.Elitism > c.PopulationSize {
		return fmt.Errorf("ga config: elitism %d outside [0, %d]", c.Elitism, c.PopulationSize)
	}
	return nil
}

// #endregion config

// #region best

// Best is the globally best evaluated design across the entire run.
type Best struct {
	Individual   design.Individual
	Genes        map[string]float64
	Objective    float64
	Metrics      map[string]float64
	EvaluationID string
	Generation   int
}

// ErrNoSuccessfulEvaluation is returned when every evaluation in the run
// failed; there is no best design to report.
var ErrNoSuccessfulEvaluation = errors.New("no evaluation succeeded")

// #endregion best
