package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/qixiaoyu27/Fluent/internal/design"
	"github.com/qixiaoyu27/Fluent/internal/ga"
	"github.com/qixiaoyu27/Fluent/internal/objective"
	"github.com/qixiaoyu27/Fluent/internal/report"
	"github.com/qixiaoyu27/Fluent/internal/solver"
)

// #region file

// RunConfig is the `run` section: GA parameters, objective and seed.
type RunConfig struct {
	ga.Config `yaml:",inline"`
	Objective objective.Config `yaml:"objective"`
	// Seed fixes the random source for reproducible runs; zero means
	// seed from the clock.
	Seed int64 `yaml:"seed"`
}

// File is the full YAML run configuration.
type File struct {
	Run       RunConfig           `yaml:"run"`
	Variables []design.Variable   `yaml:"variables" validate:"required,min=1,dive"`
	Solver    solver.RunnerConfig `yaml:"solver"`
	Report    report.ChartConfig  `yaml:"report"`
}

// Loaded bundles the parsed file with the startup-validated pieces built
// from it.
type Loaded struct {
	File      File
	Set       *design.VariableSet
	Objective *objective.Func
}

// #endregion file

// #region load

// Load reads, parses and fully validates a run configuration. Every
// configuration error surfaces here, before any evaluation happens.
func Load(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := file.Run.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	set, err := design.NewVariableSet(file.Variables)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	obj, err := objective.New(file.Run.Objective)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &Loaded{File: file, Set: set, Objective: obj}, nil
}

// #endregion load
