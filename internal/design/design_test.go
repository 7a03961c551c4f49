package design

import (
	"math/rand"
	"testing"
)

func testSet(t *testing.T) *VariableSet {
	t.Helper()
	set, err := NewVariableSet([]Variable{
		{Name: "chord", Minimum: 0.2, Maximum: 1.2, Default: 0.8},
		{Name: "sweep", Minimum: -5, Maximum: 25, Default: 10},
		{Name: "thickness", Minimum: 0.05, Maximum: 0.18, Default: 0.12},
	})
	if err != nil {
		t.Fatalf("NewVariableSet: %v", err)
	}
	return set
}

func TestVariableValidate(t *testing.T) {
	cases := []struct {
		name    string
		v       Variable
		wantErr bool
	}{
		{"valid", Variable{Name: "x", Minimum: 0, Maximum: 1, Default: 0.5}, false},
		{"degenerate range", Variable{Name: "x", Minimum: 1, Maximum: 1, Default: 1}, true},
		{"inverted range", Variable{Name: "x", Minimum: 2, Maximum: 1, Default: 1.5}, true},
		{"default below min", Variable{Name: "x", Minimum: 0, Maximum: 1, Default: -0.1}, true},
		{"default above max", Variable{Name: "x", Minimum: 0, Maximum: 1, Default: 1.1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.v.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewVariableSetRejectsDuplicates(t *testing.T) {
	_, err := NewVariableSet([]Variable{
		{Name: "x", Minimum: 0, Maximum: 1, Default: 0},
		{Name: "x", Minimum: 0, Maximum: 2, Default: 1},
	})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestSampleWithinBounds(t *testing.T) {
	set := testSet(t)
	rng := rand.New(rand.NewSource(1))

	for n := 0; n < 200; n++ {
		ind := set.Sample(rng)
		if len(ind) != set.Len() {
			t.Fatalf("expected %d genes, got %d", set.Len(), len(ind))
		}
		for i := 0; i < set.Len(); i++ {
			v := set.At(i)
			if ind[i] < v.Minimum || ind[i] > v.Maximum {
				t.Fatalf("gene %s = %g outside [%g, %g]", v.Name, ind[i], v.Minimum, v.Maximum)
			}
		}
	}
}

func TestCrossoverConservesGenes(t *testing.T) {
	set := testSet(t)
	rng := rand.New(rand.NewSource(2))

	a := set.Sample(rng)
	b := set.Sample(rng)

	for n := 0; n < 100; n++ {
		ca, cb := set.Crossover(a, b, rng)
		// Gene-wise, the offspring pair must partition the parent pair:
		// at every position one child holds a's value and the other b's.
		for i := range a {
			ok := (ca[i] == a[i] && cb[i] == b[i]) || (ca[i] == b[i] && cb[i] == a[i])
			if !ok {
				t.Fatalf("position %d: invented gene values ca=%g cb=%g (a=%g b=%g)", i, ca[i], cb[i], a[i], b[i])
			}
		}
		// First gene always comes from the same-side parent (pivot >= 1).
		if ca[0] != a[0] || cb[0] != b[0] {
			t.Fatalf("pivot below 1: ca[0]=%g cb[0]=%g", ca[0], cb[0])
		}
	}
}

func TestCrossoverSingleVariablePassThrough(t *testing.T) {
	set, err := NewVariableSet([]Variable{{Name: "x", Minimum: 0, Maximum: 1, Default: 0.5}})
	if err != nil {
		t.Fatalf("NewVariableSet: %v", err)
	}
	rng := rand.New(rand.NewSource(3))
	a := Individual{0.1}
	b := Individual{0.9}
	ca, cb := set.Crossover(a, b, rng)
	if ca[0] != 0.1 || cb[0] != 0.9 {
		t.Fatalf("expected pass-through copies, got %v %v", ca, cb)
	}
	ca[0] = 0.7
	if a[0] != 0.1 {
		t.Fatal("offspring aliases parent storage")
	}
}

func TestMutateRatesAndClamping(t *testing.T) {
	set := testSet(t)

	t.Run("rate zero leaves genes untouched", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		ind := set.Defaults()
		want := ind.Clone()
		set.Mutate(ind, 0, 0.5, rng)
		for i := range ind {
			if ind[i] != want[i] {
				t.Fatalf("gene %d changed with rate 0", i)
			}
		}
	})

	t.Run("rate one stays in bounds", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		for n := 0; n < 200; n++ {
			ind := set.Sample(rng)
			set.Mutate(ind, 1, 2.0, rng)
			for i := 0; i < set.Len(); i++ {
				v := set.At(i)
				if ind[i] < v.Minimum || ind[i] > v.Maximum {
					t.Fatalf("mutated gene %s = %g outside [%g, %g]", v.Name, ind[i], v.Minimum, v.Maximum)
				}
			}
		}
	})
}

func TestGenesAndValue(t *testing.T) {
	set := testSet(t)
	ind := set.Defaults()

	genes := set.Genes(ind)
	if len(genes) != 3 {
		t.Fatalf("expected 3 genes, got %d", len(genes))
	}
	if genes["sweep"] != 10 {
		t.Fatalf("expected sweep default 10, got %g", genes["sweep"])
	}

	if v, ok := set.Value(ind, "chord"); !ok || v != 0.8 {
		t.Fatalf("Value(chord) = %g, %v", v, ok)
	}
	if _, ok := set.Value(ind, "span"); ok {
		t.Fatal("expected lookup miss for unknown variable")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ind := Individual{1, 2, 3}
	dup := ind.Clone()
	dup[0] = 9
	if ind[0] != 1 {
		t.Fatal("clone aliases the original")
	}
}
