package solver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/qixiaoyu27/Fluent/internal/design"
	"github.com/qixiaoyu27/Fluent/internal/objective"
)

// #region stub

// StubEvaluator computes metrics analytically instead of running the
// external solver. Used for dry runs of the optimization pipeline and
// by tests that need a fast deterministic evaluator.
type StubEvaluator struct {
	Set       *design.VariableSet
	Objective *objective.Func
	// Metrics derives the pseudo solver output from a design's genes.
	Metrics func(genes map[string]float64) map[string]float64
}

// Evaluate scores the individual through the configured objective, exactly
// like a real solver case would.
func (s *StubEvaluator) Evaluate(_ context.Context, ind design.Individual) (Outcome, error) {
	id := uuid.NewString()[:8]
	metrics := s.Metrics(s.Set.Genes(ind))

	score, err := s.Objective.Score(metrics)
	if err != nil {
		return Outcome{
			Status:       StatusParseFailure,
			EvaluationID: id,
			Detail:       err.Error(),
		}, nil
	}
	return Outcome{
		Status:       StatusOK,
		EvaluationID: id,
		Result: Result{
			ObjectiveValue: score,
			Metrics:        metrics,
		},
	}, nil
}

// SumMetrics is the default stub metric model: cl is the sum of all gene
// values, cd is held at one, so CL/CD-style objectives reduce to the gene
// sum. Handy for smoke-testing a configuration end to end.
func SumMetrics(genes map[string]float64) map[string]float64 {
	var sum float64
	for _, v := range genes {
		sum += v
	}
	return map[string]float64{"cl": sum, "cd": 1}
}

// NewStubEvaluator builds a stub with the given metric model, defaulting
// to SumMetrics.
func NewStubEvaluator(set *design.VariableSet, obj *objective.Func, metrics func(map[string]float64) map[string]float64) (*StubEvaluator, error) {
	if set == nil || obj == nil {
		return nil, fmt.Errorf("stub evaluator: variable set and objective required")
	}
	if metrics == nil {
		metrics = SumMetrics
	}
	return &StubEvaluator{Set: set, Objective: obj, Metrics: metrics}, nil
}

// #endregion stub
