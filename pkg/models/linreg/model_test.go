package linreg

import (
	"math"
	"math/rand"
	"testing"
)

func exactRows() ([]map[string]float64, []float64) {
	// y = 5 + 2*a - 3*b
	rows := make([]map[string]float64, 0, 12)
	targets := make([]float64, 0, 12)
	for i := 0; i < 12; i++ {
		a := float64(i)
		b := float64(i%4) * 1.5
		rows = append(rows, map[string]float64{"a": a, "b": b})
		targets = append(targets, 5+2*a-3*b)
	}
	return rows, targets
}

func TestModel_RecoversCoefficients(t *testing.T) {
	rows, targets := exactRows()

	m := New([]string{"a", "b"})
	if err := m.Fit(rows, targets); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	want := []float64{5, 2, -3}
	for i, w := range want {
		if math.Abs(m.Coeffs[i]-w) > 1e-8 {
			t.Errorf("coeff[%d]: got %v, expected %v", i, m.Coeffs[i], w)
		}
	}
	if m.RSquared < 0.9999 {
		t.Errorf("noise-free fit should have R^2 ~ 1, got %v", m.RSquared)
	}
}

func TestModel_PredictMatchesTraining(t *testing.T) {
	rows, targets := exactRows()

	m := New([]string{"a", "b"})
	if err := m.Fit(rows, targets); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	got, err := m.Predict(map[string]float64{"a": 20, "b": 1})
	if err != nil {
		t.Fatalf("unexpected predict error: %v", err)
	}
	if want := 5.0 + 2*20 - 3*1; math.Abs(got-want) > 1e-8 {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestModel_FeatureMismatch(t *testing.T) {
	rows, targets := exactRows()

	m := New([]string{"a", "b"})
	if err := m.Fit(rows, targets); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	if _, err := m.Predict(map[string]float64{"a": 1}); err == nil {
		t.Error("expected error for missing feature")
	}
	if _, err := m.Predict(map[string]float64{"a": 1, "c": 2}); err == nil {
		t.Error("expected error for wrong feature name")
	}
	if _, err := m.Predict(map[string]float64{"a": 1, "b": 2, "c": 3}); err == nil {
		t.Error("expected error for extra feature")
	}
}

func TestModel_FitRejectsMissingFeature(t *testing.T) {
	m := New([]string{"a", "b"})
	rows := []map[string]float64{
		{"a": 1, "b": 2}, {"a": 2, "b": 1}, {"a": 3, "b": 4},
		{"a": 4}, {"a": 5, "b": 2},
	}
	if err := m.Fit(rows, []float64{1, 2, 3, 4, 5}); err == nil {
		t.Error("expected error for a row missing a trained feature")
	}
}

func TestModel_InsufficientRows(t *testing.T) {
	m := New([]string{"a", "b"})
	rows := []map[string]float64{{"a": 1, "b": 2}, {"a": 2, "b": 3}}
	if err := m.Fit(rows, []float64{1, 2}); err == nil {
		t.Error("expected error when rows <= parameters")
	}
}

func TestModel_BootstrapIntervalIsSeeded(t *testing.T) {
	rng1 := rand.New(rand.NewSource(42))
	rng2 := rand.New(rand.NewSource(42))

	rows, targets := exactRows()
	// add noise so residuals are non-degenerate
	noise := rand.New(rand.NewSource(5))
	for i := range targets {
		targets[i] += noise.NormFloat64()
	}

	m := New([]string{"a", "b"})
	if err := m.Fit(rows, targets); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	row := map[string]float64{"a": 6, "b": 3}
	p1, i1, err := m.PredictInterval(row, 0.95, rng1, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, i2, err := m.PredictInterval(row, 0.95, rng2, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p1 != p2 || i1 != i2 {
		t.Errorf("same seed should reproduce the interval: %v/%v vs %v/%v", p1, i1, p2, i2)
	}
	if !(i1.Lower <= p1 && p1 <= i1.Upper) {
		t.Errorf("interval should contain the point prediction: %v in %+v", p1, i1)
	}
}

func TestModel_FitIsDeterministic(t *testing.T) {
	rows, targets := exactRows()

	a := New([]string{"a", "b"})
	b := New([]string{"a", "b"})
	if err := a.Fit(rows, targets); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(rows, targets); err != nil {
		t.Fatalf("fit b: %v", err)
	}

	for i := range a.Coeffs {
		if a.Coeffs[i] != b.Coeffs[i] {
			t.Errorf("coeff[%d] differs between identical fits", i)
		}
	}
}
