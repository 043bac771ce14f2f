package smooth

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mbenes/groupfit/pkg/timeseries"
)

func TestModel_FitLevelSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	values := make([]float64, 100)
	for i := range values {
		values[i] = 50 + rng.NormFloat64()
	}

	m := New()
	if err := m.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	if math.Abs(m.Level-50) > 2 {
		t.Errorf("level should be near 50, got %v", m.Level)
	}
	if m.Alpha <= 0 || m.Alpha >= 1 {
		t.Errorf("alpha out of range: %v", m.Alpha)
	}
}

func TestModel_FitTooShort(t *testing.T) {
	m := New()
	if err := m.Fit(timeseries.New([]float64{1, 2})); err == nil {
		t.Error("expected an error for a two-point series")
	}
}

func TestModel_ForecastFlatWithWideningInterval(t *testing.T) {
	m := New()
	if err := m.Fit(timeseries.New([]float64{10, 12, 9, 15, 11, 13})); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	results, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("unexpected forecast error: %v", err)
	}

	for i, r := range results {
		if r.PointForecast != m.Level {
			t.Errorf("step %d: SES forecast should be flat", i)
		}
		if !(r.Lower95 <= r.Lower80 && r.Lower80 <= r.PointForecast &&
			r.PointForecast <= r.Upper80 && r.Upper80 <= r.Upper95) {
			t.Errorf("step %d: interval ordering violated: %+v", i, r)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].StandardError < results[i-1].StandardError {
			t.Errorf("standard error should not shrink with horizon: step %d", i)
		}
	}
}

func TestModel_ForecastBeforeFit(t *testing.T) {
	m := New()
	if _, err := m.Forecast(1); err == nil {
		t.Error("expected ErrNotFitted")
	}
}

func TestModel_FitIsDeterministic(t *testing.T) {
	s := timeseries.New([]float64{10, 12, 9, 15})

	a, b := New(), New()
	if err := a.Fit(s); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(s.Copy()); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	if a.Alpha != b.Alpha || a.Level != b.Level {
		t.Errorf("repeated fits should agree: alpha %v/%v level %v/%v", a.Alpha, b.Alpha, a.Level, b.Level)
	}
}
