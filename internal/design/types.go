package design

import "fmt"

// #region variable

// Variable describes one scalar dimension of the design space.
type Variable struct {
	Name    string  `yaml:"name" validate:"required"`
	Minimum float64 `yaml:"minimum"`
	Maximum float64 `yaml:"maximum"`
	Default float64 `yaml:"default"`
}

// Validate checks the variable's range invariants.
func (v Variable) Validate() error {
	if v.Minimum >= v.Maximum {
		return fmt.Errorf("variable %q: minimum %g must be below maximum %g", v.Name, v.Minimum, v.Maximum)
	}
	if v.Default < v.Minimum || v.Default > v.Maximum {
		return fmt.Errorf("variable %q: default %g outside [%g, %g]", v.Name, v.Default, v.Minimum, v.Maximum)
	}
	return nil
}

// Clamp limits a value to the variable's range.
func (v Variable) Clamp(x float64) float64 {
	if x < v.Minimum {
		return v.Minimum
	}
	if x > v.Maximum {
		return v.Maximum
	}
	return x
}

// #endregion variable

// #region individual

// Individual is one candidate point in the design space. Gene values are
// positionally aligned with the VariableSet the individual was created from.
type Individual []float64

// Clone returns an independent copy, so elites carried into the next
// generation never alias the prior generation's storage.
func (ind Individual) Clone() Individual {
	out := make(Individual, len(ind))
	copy(out, ind)
	return out
}

// #endregion individual
