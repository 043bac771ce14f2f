package sarima

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mbenes/groupfit/pkg/timeseries"
)

// seasonalSeries builds a monthly series with yearly seasonality and noise.
func seasonalSeries(years int, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, years*12)
	for i := range values {
		month := i % 12
		values[i] = 100 + 20*math.Sin(2*math.Pi*float64(month)/12) + rng.NormFloat64()*2
	}
	return timeseries.New(values)
}

func TestModel_FitSeasonal(t *testing.T) {
	s := seasonalSeries(6, 42)

	m := New(1, 0, 0, 1, 1, 0, 12)
	if err := m.Fit(s); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	if m.Variance <= 0 {
		t.Errorf("variance should be positive, got %v", m.Variance)
	}
	if math.IsNaN(m.AIC) {
		t.Error("AIC should not be NaN")
	}
}

func TestModel_FitInsufficientData(t *testing.T) {
	s := timeseries.New([]float64{1, 2, 3, 4, 5})
	m := New(1, 0, 0, 1, 1, 0, 12)
	if err := m.Fit(s); err == nil {
		t.Error("expected error for short series")
	}
}

func TestModel_SeasonalForecastTracksPattern(t *testing.T) {
	s := seasonalSeries(8, 7)

	m := New(0, 0, 0, 1, 1, 0, 12)
	if err := m.Fit(s); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	points, err := m.Predict(12)
	if err != nil {
		t.Fatalf("unexpected predict error: %v", err)
	}

	// The forecast year should roughly reproduce the seasonal shape of the
	// last observed year.
	lastYear := s.Values[len(s.Values)-12:]
	for i := 0; i < 12; i++ {
		if math.Abs(points[i]-lastYear[i]) > 15 {
			t.Errorf("month %d: forecast %v too far from seasonal level %v", i, points[i], lastYear[i])
		}
	}
}

func TestModel_ForecastIntervalOrdering(t *testing.T) {
	s := seasonalSeries(6, 11)

	m := New(1, 0, 0, 0, 1, 0, 12)
	if err := m.Fit(s); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	results, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("unexpected forecast error: %v", err)
	}
	for i, r := range results {
		if !(r.Lower95 <= r.Lower80 && r.Lower80 <= r.PointForecast &&
			r.PointForecast <= r.Upper80 && r.Upper80 <= r.Upper95) {
			t.Errorf("step %d: interval ordering violated: %+v", i, r)
		}
	}
}

func TestModel_FitIsDeterministic(t *testing.T) {
	s := seasonalSeries(6, 5)

	a := New(1, 0, 1, 1, 1, 0, 12)
	b := New(1, 0, 1, 1, 1, 0, 12)
	if err := a.Fit(s); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(s.Copy()); err != nil {
		t.Fatalf("fit b: %v", err)
	}

	pa, _ := a.Predict(4)
	pb, _ := b.Predict(4)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("step %d: predictions differ (%v vs %v)", i, pa[i], pb[i])
		}
	}
}
