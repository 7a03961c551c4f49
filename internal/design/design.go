package design

import (
	"fmt"
	"math/rand"
)

// #region variable-set

// VariableSet is the ordered, name-unique collection of design variables
// that defines the search space. It is fixed for an entire run.
type VariableSet struct {
	vars  []Variable
	index map[string]int
}

// NewVariableSet validates the variables and builds the set.
func NewVariableSet(vars []Variable) (*VariableSet, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("variable set: at least one variable required")
	}
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("variable set: %w", err)
		}
		if _, dup := index[v.Name]; dup {
			return nil, fmt.Errorf("variable set: duplicate variable %q", v.Name)
		}
		index[v.Name] = i
	}
	set := &VariableSet{
		vars:  make([]Variable, len(vars)),
		index: index,
	}
	copy(set.vars, vars)
	return set, nil
}

// Len returns the number of variables.
func (s *VariableSet) Len() int {
	return len(s.vars)
}

// At returns the variable at position i.
func (s *VariableSet) At(i int) Variable {
	return s.vars[i]
}

// Names returns the variable names in set order.
func (s *VariableSet) Names() []string {
	names := make([]string, len(s.vars))
	for i, v := range s.vars {
		names[i] = v.Name
	}
	return names
}

// Genes maps an individual's values by variable name.
func (s *VariableSet) Genes(ind Individual) map[string]float64 {
	genes := make(map[string]float64, len(s.vars))
	for i, v := range s.vars {
		genes[v.Name] = ind[i]
	}
	return genes
}

// Value looks up a single gene by variable name.
func (s *VariableSet) Value(ind Individual, name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return ind[i], true
}

// #endregion variable-set

// #region sample

// Sample draws a new individual uniformly at random within each variable's
// bounds.
func (s *VariableSet) Sample(rng *rand.Rand) Individual {
	ind := make(Individual, len(s.vars))
	for i, v := range s.vars {
		ind[i] = v.Minimum + rng.Float64()*(v.Maximum-v.Minimum)
	}
	return ind
}

// Defaults returns the individual made of every variable's default value.
func (s *VariableSet) Defaults() Individual {
	ind := make(Individual, len(s.vars))
	for i, v := range s.vars {
		ind[i] = v.Default
	}
	return ind
}

// #endregion sample

// #region crossover

// Crossover performs single-point crossover over the ordered variable list.
// The pivot is drawn from 1..N-1; offspring A takes genes before the pivot
// from parent a and from the pivot onward from parent b, offspring B is the
// complement. With a single variable there is no interior pivot and the
// parents pass through as copies.
func (s *VariableSet) Crossover(a, b Individual, rng *rand.Rand) (Individual, Individual) {
	n := len(s.vars)
	if n < 2 {
		return a.Clone(), b.Clone()
	}
	pivot := 1 + rng.Intn(n-1)
	childA := make(Individual, n)
	childB := make(Individual, n)
	copy(childA[:pivot], a[:pivot])
	copy(childA[pivot:], b[pivot:])
	copy(childB[:pivot], b[:pivot])
	copy(childB[pivot:], a[pivot:])
	return childA, childB
}

// #endregion crossover

// #region mutate

// Mutate perturbs each gene with probability rate by Gaussian noise whose
// standard deviation is sigma scaled to the variable's range, then clamps
// the result back into bounds. The individual is modified in place.
func (s *VariableSet) Mutate(ind Individual, rate, sigma float64, rng *rand.Rand) {
	for i, v := range s.vars {
		if rng.Float64() < rate {
			delta := rng.NormFloat64() * sigma * (v.Maximum - v.Minimum)
			ind[i] = v.Clamp(ind[i] + delta)
		}
	}
}

// Clamp forces every gene of an individual back into its variable's range.
func (s *VariableSet) Clamp(ind Individual) {
	for i, v := range s.vars {
		ind[i] = v.Clamp(ind[i])
	}
}

// #endregion mutate
