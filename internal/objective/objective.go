package objective

import (
	"fmt"
	"math"
)

// #region policy

// Policy selects how the scalar fitness is derived from solver metrics.
type Policy string

const (
	// PolicyMaximizeRatio maximizes numerator/denominator (e.g. CL/CD).
	PolicyMaximizeRatio Policy = "maximize_ratio"
	// PolicyMinimize minimizes a single metric (fitness is its negation).
	PolicyMinimize Policy = "minimize"
	// PolicyTarget drives a metric toward a target value (fitness is the
	// negated absolute deviation).
	PolicyTarget Policy = "target"
)

// #endregion policy

// #region config

// Config is the objective section of the run configuration.
type Config struct {
	Policy      Policy  `yaml:"policy"`
	Metric      string  `yaml:"metric"`
	Numerator   string  `yaml:"numerator"`
	Denominator string  `yaml:"denominator"`
	Target      float64 `yaml:"target"`
}

// #endregion config

// #region func

// Func scores solver metrics under one configured policy.
type Func struct {
	cfg Config
}

// New resolves the configured policy. Unknown policy names and missing
// metric bindings are configuration errors, surfaced before any evaluation.
func New(cfg Config) (*Func, error) {
	cfg = normalize(cfg)

	switch cfg.Policy {
	case PolicyMaximizeRatio:
		if cfg.Numerator == "" || cfg.Denominator == "" {
			return nil, fmt.Errorf("objective %s: numerator and denominator metrics required", cfg.Policy)
		}
	case PolicyMinimize, PolicyTarget:
		if cfg.Metric == "" {
			return nil, fmt.Errorf("objective %s: metric name required", cfg.Policy)
		}
	default:
		return nil, fmt.Errorf("unsupported objective policy %q", cfg.Policy)
	}
	return &Func{cfg: cfg}, nil
}

// Policy returns the resolved policy.
func (f *Func) Policy() Policy {
	return f.cfg.Policy
}

// Score computes the scalar fitness from raw solver metrics. A missing
// metric or a zero ratio denominator is an error; the caller records it as
// a parse failure rather than scoring the design.
func (f *Func) Score(metrics map[string]float64) (float64, error) {
	switch f.cfg.Policy {
	case PolicyMaximizeRatio:
		num, err := lookup(metrics, f.cfg.Numerator)
		if err != nil {
			return 0, err
		}
		den, err := lookup(metrics, f.cfg.Denominator)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, fmt.Errorf("objective %s: denominator metric %q is zero", f.cfg.Policy, f.cfg.Denominator)
		}
		return num / den, nil
	case PolicyMinimize:
		v, err := lookup(metrics, f.cfg.Metric)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case PolicyTarget:
		v, err := lookup(metrics, f.cfg.Metric)
		if err != nil {
			return 0, err
		}
		return -math.Abs(v - f.cfg.Target), nil
	}
	// New rejects anything else at startup.
	return 0, fmt.Errorf("unsupported objective policy %q", f.cfg.Policy)
}

// #endregion func

// #region helpers

// normalize maps the historical policy spellings onto their generic form.
func normalize(cfg Config) Config {
	switch string(cfg.Policy) {
	case "maximize_cl_cd":
		cfg.Policy = PolicyMaximizeRatio
		if cfg.Numerator == "" {
			cfg.Numerator = "cl"
		}
		if cfg.Denominator == "" {
			cfg.Denominator = "cd"
		}
	case "minimize_cd":
		cfg.Policy = PolicyMinimize
		if cfg.Metric == "" {
			cfg.Metric = "cd"
		}
	case "target_cl":
		cfg.Policy = PolicyTarget
		if cfg.Metric == "" {
			cfg.Metric = "cl"
		}
	}
	return cfg
}

func lookup(metrics map[string]float64, name string) (float64, error) {
	v, ok := metrics[name]
	if !ok {
		return 0, fmt.Errorf("metric %q missing from solver output", name)
	}
	return v, nil
}

// #endregion helpers
