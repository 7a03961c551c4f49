package objective

import (
	"math"
	"testing"
)

func TestMaximizeRatio(t *testing.T) {
	f, err := New(Config{Policy: PolicyMaximizeRatio, Numerator: "cl", Denominator: "cd"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	score, err := f.Score(map[string]float64{"cl": 0.8, "cd": 0.04})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(score-20) > 1e-12 {
		t.Fatalf("expected 20, got %g", score)
	}
}

func TestMaximizeRatioZeroDenominator(t *testing.T) {
	f, err := New(Config{Policy: PolicyMaximizeRatio, Numerator: "cl", Denominator: "cd"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.Score(map[string]float64{"cl": 0.8, "cd": 0}); err == nil {
		t.Fatal("expected zero-denominator error")
	}
}

func TestMinimize(t *testing.T) {
	f, err := New(Config{Policy: PolicyMinimize, Metric: "cd"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	score, err := f.Score(map[string]float64{"cd": 0.03})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != -0.03 {
		t.Fatalf("expected -0.03, got %g", score)
	}
}

func TestTarget(t *testing.T) {
	f, err := New(Config{Policy: PolicyTarget, Metric: "cl", Target: 0.5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	score, err := f.Score(map[string]float64{"cl": 0.65})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(score-(-0.15)) > 1e-12 {
		t.Fatalf("expected -0.15, got %g", score)
	}
}

func TestMissingMetric(t *testing.T) {
	f, err := New(Config{Policy: PolicyMinimize, Metric: "cd"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.Score(map[string]float64{"cl": 0.8}); err == nil {
		t.Fatal("expected missing-metric error")
	}
}

func TestUnknownPolicyRejectedAtStartup(t *testing.T) {
	if _, err := New(Config{Policy: "maximise_lift"}); err == nil {
		t.Fatal("expected unknown policy error")
	}
}

func TestMissingMetricBindingRejectedAtStartup(t *testing.T) {
	if _, err := New(Config{Policy: PolicyMaximizeRatio, Numerator: "cl"}); err == nil {
		t.Fatal("expected missing denominator error")
	}
	if _, err := New(Config{Policy: PolicyTarget}); err == nil {
		t.Fatal("expected missing metric error")
	}
}

func TestHistoricalSpellings(t *testing.T) {
	cases := []struct {
		spelling string
		policy   Policy
	}{
		{"maximize_cl_cd", PolicyMaximizeRatio},
		{"minimize_cd", PolicyMinimize},
		{"target_cl", PolicyTarget},
	}
	for _, tc := range cases {
		t.Run(tc.spelling, func(t *testing.T) {
			f, err := New(Config{Policy: Policy(tc.spelling), Target: 0.4})
			if err != nil {
				t.Fatalf("New(%s): %v", tc.spelling, err)
			}
			if f.Policy() != tc.policy {
				t.Fatalf("expected %s, got %s", tc.policy, f.Policy())
			}
			if _, err := f.Score(map[string]float64{"cl": 0.6, "cd": 0.05}); err != nil {
				t.Fatalf("Score: %v", err)
			}
		})
	}
}
