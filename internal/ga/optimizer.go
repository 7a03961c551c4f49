package ga

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/qixiaoyu27/Fluent/internal/design"
	"github.com/qixiaoyu27/Fluent/internal/ledger"
	"github.com/qixiaoyu27/Fluent/internal/report"
	"github.com/qixiaoyu27/Fluent/internal/solver"
)

// #region optimizer

// Optimizer drives the population lifecycle: initialization, fitness
// evaluation, elitism, selection, crossover, mutation, replacement. Every
// evaluation outcome is appended to the ledger; reporters are notified
// after each generation. Evaluation is sequential and synchronous.
type Optimizer struct {
	set       *design.VariableSet
	cfg       Config
	evaluator solver.Evaluator
	store     *ledger.Store
	reporters []report.Reporter
	rng       *rand.Rand
}

// New wires an optimizer. All randomness flows through the single rng so
// runs are reproducible under a fixed seed.
func New(set *design.VariableSet, cfg Config, evaluator solver.Evaluator, store *ledger.Store, rng *rand.Rand) (*Optimizer, error) {
	if set == nil || evaluator == nil || store == nil || rng == nil {
		return nil, fmt.Errorf("ga: variable set, evaluator, ledger and rng are all required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{
		set:       set,
		cfg:       cfg,
		evaluator: evaluator,
		store:     store,
		rng:       rng,
	}, nil
}

// AddReporter registers a progress sink. Reporter failures are logged and
// never abort the run.
func (o *Optimizer) AddReporter(r report.Reporter) {
	o.reporters = append(o.reporters, r)
}

// #endregion optimizer

// #region run

// Run executes the full search and returns the best design observed across
// all generations, not only the final one. The loop always performs exactly
// Generations evaluation rounds; it does not stop early on convergence.
func (o *Optimizer) Run(ctx context.Context) (Best, error) {
	base, err := o.store.LastGeneration()
	if err != nil {
		return Best{}, err
	}
	if base > 0 {
		log.Printf("[GA] resuming onto existing ledger, continuing at generation %d", base+1)
	}

	population := make([]design.Individual, o.cfg.PopulationSize)
	for i := range population {
		population[i] = o.set.Sample(o.rng)
	}

	var best Best
	haveBest := false

	for round := 1; round <= o.cfg.Generations; round++ {
		generation := base + round
		log.Printf("[GA] generation %d: evaluating %d individuals", generation, len(population))

		fitness, err := o.evaluateGeneration(ctx, generation, population, &best, &haveBest)
		if err != nil {
			return Best{}, err
		}

		genBest := math.Inf(-1)
		for _, f := range fitness {
			if f > genBest {
				genBest = f
			}
		}
		if math.IsInf(genBest, -1) {
			log.Printf("[GA] generation %d: every evaluation failed", generation)
		} else {
			log.Printf("[GA] generation %d: best objective %.6f", generation, genBest)
		}

		o.notifyReporters(generation)

		if round < o.cfg.Generations {
			population = o.nextPopulation(population, fitness)
		}
	}

	if !haveBest {
		return Best{}, ErrNoSuccessfulEvaluation
	}
	return best, nil
}

// evaluateGeneration evaluates every individual exactly once, appends one
// ledger entry per outcome, and returns the fitness vector. A failed
// evaluation gets the worst possible fitness so it can win selection only
// against other failures; it never aborts the generation. Environment
// errors do abort.
func (o *Optimizer) evaluateGeneration(ctx context.Context, generation int, population []design.Individual, best *Best, haveBest *bool) ([]float64, error) {
	fitness := make([]float64, len(population))

	for i, ind := range population {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ga: run cancelled: %w", err)
		}

		outcome, err := o.evaluator.Evaluate(ctx, ind)
		if err != nil {
			return nil, fmt.Errorf("ga: evaluate individual: %w", err)
		}

		entry := ledger.Entry{
			Generation:   generation,
			EvaluationID: outcome.EvaluationID,
			Genes:        o.set.Genes(ind),
			Status:       string(outcome.Status),
			Detail:       outcome.Detail,
		}

		if outcome.OK() {
			entry.Objective = outcome.Result.ObjectiveValue
			entry.Metrics = outcome.Result.Metrics
			fitness[i] = outcome.Result.ObjectiveValue
			// Strict comparison: ties keep the earliest evaluation.
			if !*haveBest || outcome.Result.ObjectiveValue > best.Objective {
				*haveBest = true
				*best = Best{
					Individual:   ind.Clone(),
					Genes:        o.set.Genes(ind),
					Objective:    outcome.Result.ObjectiveValue,
					Metrics:      outcome.Result.Metrics,
					EvaluationID: outcome.EvaluationID,
					Generation:   generation,
				}
			}
		} else {
			fitness[i] = math.Inf(-1)
			log.Printf("[GA] evaluation %s failed (%s): %s", outcome.EvaluationID, outcome.Status, outcome.Detail)
		}

		if err := o.store.Append(entry); err != nil {
			return nil, fmt.Errorf("ga: record evaluation: %w", err)
		}
	}
	return fitness, nil
}

// #endregion run

// #region reproduction

// nextPopulation builds a fresh population from elites plus offspring of
// tournament-selected parents. The returned slice never aliases the prior
// generation's individuals.
func (o *Optimizer) nextPopulation(population []design.Individual, fitness []float64) []design.Individual {
	next := make([]design.Individual, 0, o.cfg.PopulationSize+1)
	for _, idx := range o.eliteIndices(fitness) {
		next = append(next, population[idx].Clone())
	}

	for len(next) < o.cfg.PopulationSize {
		parentA := population[o.tournament(fitness)]
		parentB := population[o.tournament(fitness)]

		var childA, childB design.Individual
		if o.rng.Float64() < o.cfg.CrossoverRate {
			childA, childB = o.set.Crossover(parentA, parentB, o.rng)
		} else {
			childA, childB = parentA.Clone(), parentB.Clone()
		}
		o.set.Mutate(childA, o.cfg.MutationRate, o.cfg.MutationSigma, o.rng)
		o.set.Mutate(childB, o.cfg.MutationRate, o.cfg.MutationSigma, o.rng)

		// Both offspring join even when only one slot remains; the
		// truncation below restores the exact population size.
		next = append(next, childA, childB)
	}
	return next[:o.cfg.PopulationSize]
}

// eliteIndices returns the positions of the top Elitism individuals by
// fitness, descending. The stable sort breaks ties in favor of the
// earliest-evaluated individual.
func (o *Optimizer) eliteIndices(fitness []float64) []int {
	idx := make([]int, len(fitness))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fitness[idx[a]] > fitness[idx[b]]
	})
	return idx[:o.cfg.Elitism]
}

// tournament draws TournamentSize distinct indices and returns the one
// with the highest fitness.
func (o *Optimizer) tournament(fitness []float64) int {
	drawn := o.rng.Perm(len(fitness))[:o.cfg.TournamentSize]
	best := drawn[0]
	for _, i := range drawn[1:] {
		if fitness[i] > fitness[best] {
			best = i
		}
	}
	return best
}

// #endregion reproduction

// #region reporting

// notifyReporters hands every registered reporter a fresh history
// snapshot. Best effort: read or reporter errors are logged, never fatal.
func (o *Optimizer) notifyReporters(generation int) {
	if len(o.reporters) == 0 {
		return
	}
	history, err := o.store.ReadAll()
	if err != nil {
		log.Printf("[GA] reporter snapshot read failed: %v", err)
		return
	}
	for _, r := range o.reporters {
		if err := r.Update(generation, history); err != nil {
			log.Printf("[GA] reporter update failed: %v", err)
		}
	}
}

// #endregion reporting
