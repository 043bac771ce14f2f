// Package linreg implements multiple linear regression over named
// features. A fitted model remembers the exact feature list it was trained
// on and refuses prediction input that does not match it.
package linreg

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mbenes/groupfit/pkg/stats"
)

var (
	ErrNotFitted        = errors.New("model must be fitted before prediction")
	ErrInsufficientData = errors.New("not enough rows for the number of features")
	ErrSingular         = errors.New("design matrix is singular")
)

type Model struct {
	Features  []string
	Coeffs    []float64 // intercept first, then one per feature
	StdErrors []float64
	RSquared  float64
	Variance  float64

	fitted    bool
	residuals []float64
}

func New(features []string) *Model {
	names := make([]string, len(features))
	copy(names, features)
	return &Model{Features: names}
}

// Fit estimates the regression on rows of feature values keyed by name.
// Rows missing a feature are rejected.
func (m *Model) Fit(rows []map[string]float64, targets []float64) error {
	n := len(rows)
	if n != len(targets) {
		return errors.New("rows and targets must have the same length")
	}
	k := len(m.Features) + 1
	if n <= k {
		return ErrInsufficientData
	}

	x := make([][]float64, n)
	for i, row := range rows {
		x[i] = make([]float64, k)
		x[i][0] = 1
		for j, name := range m.Features {
			v, ok := row[name]
			if !ok {
				return fmt.Errorf("row %d: missing feature %q", i, name)
			}
			x[i][j+1] = v
		}
	}

	coeffs, se := stats.OLS(x, targets)
	if coeffs == nil {
		return ErrSingular
	}
	m.Coeffs = coeffs
	m.StdErrors = se

	// Residuals, variance and R^2
	m.residuals = make([]float64, n)
	mean := 0.0
	for _, t := range targets {
		mean += t
	}
	mean /= float64(n)

	sse, sst := 0.0, 0.0
	for i := range x {
		pred := 0.0
		for j := 0; j < k; j++ {
			pred += coeffs[j] * x[i][j]
		}
		m.residuals[i] = targets[i] - pred
		sse += m.residuals[i] * m.residuals[i]
		d := targets[i] - mean
		sst += d * d
	}
	m.Variance = sse / float64(n-k)
	if sst > 0 {
		m.RSquared = 1 - sse/sst
	} else {
		m.RSquared = 0
	}

	m.fitted = true
	return nil
}

// Predict evaluates the regression for one feature row. The row must carry
// exactly the features the model was trained on; extra keys are rejected
// to catch wiring mistakes between builder and fitter.
func (m *Model) Predict(row map[string]float64) (float64, error) {
	if !m.fitted {
		return 0, ErrNotFitted
	}
	if len(row) != len(m.Features) {
		return 0, fmt.Errorf("feature mismatch: got %d features, model expects %v", len(row), m.Features)
	}

	pred := m.Coeffs[0]
	for j, name := range m.Features {
		v, ok := row[name]
		if !ok {
			return 0, fmt.Errorf("missing feature %q, model expects %v", name, m.Features)
		}
		pred += m.Coeffs[j+1] * v
	}
	return pred, nil
}

// Interval holds a bootstrap prediction interval.
type Interval struct {
	Lower float64
	Upper float64
}

// PredictInterval returns the point prediction together with a residual
// bootstrap interval at the given confidence level. The rng is injected so
// runs with the same seed reproduce identical intervals.
func (m *Model) PredictInterval(row map[string]float64, confidence float64, rng *rand.Rand, samples int) (float64, Interval, error) {
	pred, err := m.Predict(row)
	if err != nil {
		return 0, Interval{}, err
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	if samples < 100 {
		samples = 100
	}

	draws := make([]float64, samples)
	for i := range draws {
		draws[i] = pred + m.residuals[rng.Intn(len(m.residuals))]
	}
	sort.Float64s(draws)

	alpha := (1 - confidence) / 2
	lo := int(math.Floor(alpha * float64(samples)))
	hi := int(math.Ceil((1-alpha)*float64(samples))) - 1
	if hi >= samples {
		hi = samples - 1
	}

	return pred, Interval{Lower: draws[lo], Upper: draws[hi]}, nil
}

func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}
