package solver

import (
	"context"

	"github.com/qixiaoyu27/Fluent/internal/design"
)

// #region status

// Status classifies the outcome of one design evaluation.
type Status string

const (
	StatusOK             Status = "ok"
	StatusTimeout        Status = "timeout"
	StatusProcessFailure Status = "process_failure"
	StatusParseFailure   Status = "parse_failure"
)

// #endregion status

// #region result

// Result is the scored output of a successful evaluation.
type Result struct {
	ObjectiveValue float64
	// Metrics holds the solver-reported quantities (e.g. cl, cd, cm) the
	// objective was derived from.
	Metrics map[string]float64
}

// #endregion result

// #region outcome

// Outcome is the tagged result of evaluating one individual. Exactly one
// design evaluation produces exactly one Outcome; failures are values here,
// not errors, so the optimizer's failure handling is exhaustive.
type Outcome struct {
	Status       Status
	EvaluationID string
	// Result is meaningful only when Status is StatusOK.
	Result Result
	// Detail carries diagnostics for failed outcomes: the tail of the
	// solver's output for process failures, the parse error otherwise.
	Detail string
}

// OK reports whether the evaluation produced a scored result.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// #endregion outcome

// #region evaluator

// Evaluator maps one design individual to one scored outcome. A returned
// error means the environment is broken (working scope cannot be created,
// binary missing) and aborts the run; per-design failures travel inside the
// Outcome. Implementations must isolate evaluations from each other: each
// call gets its own scoped identifier and leaves no state behind that can
// affect another call.
type Evaluator interface {
	Evaluate(ctx context.Context, ind design.Individual) (Outcome, error)
}

// #endregion evaluator
