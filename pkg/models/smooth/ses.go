// Package smooth implements simple exponential smoothing with automatic
// smoothing-constant selection.
package smooth

import (
	"errors"
	"math"

	"github.com/mbenes/groupfit/pkg/models/arima"
	"github.com/mbenes/groupfit/pkg/stats"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

var (
	ErrNotFitted        = errors.New("model must be fitted before prediction")
	ErrInsufficientData = errors.New("at least 3 observations are required")
)

type Model struct {
	Alpha    float64
	Level    float64
	SSE      float64
	Variance float64

	fitted    bool
	residuals []float64
}

func New() *Model {
	return &Model{}
}

// Fit selects alpha by scanning a fixed grid for the minimum one-step SSE,
// then smooths the series to obtain the final level. The scan is
// deterministic.
func (m *Model) Fit(series *timeseries.Series) error {
	n := series.Len()
	if n < 3 {
		return ErrInsufficientData
	}

	y := series.Values
	bestAlpha := 0.0
	bestSSE := math.Inf(1)

	for a := 1; a <= 99; a++ {
		alpha := float64(a) / 100
		sse := 0.0
		level := y[0]
		for t := 1; t < n; t++ {
			err := y[t] - level
			sse += err * err
			level += alpha * err
		}
		if sse < bestSSE {
			bestSSE = sse
			bestAlpha = alpha
		}
	}

	m.Alpha = bestAlpha
	m.SSE = bestSSE

	level := y[0]
	m.residuals = make([]float64, 0, n-1)
	for t := 1; t < n; t++ {
		err := y[t] - level
		m.residuals = append(m.residuals, err)
		level += m.Alpha * err
	}
	m.Level = level

	if len(m.residuals) > 1 {
		m.Variance = bestSSE / float64(len(m.residuals)-1)
	} else {
		m.Variance = bestSSE
	}

	m.fitted = true
	return nil
}

// Forecast returns the flat SES forecast with Gaussian intervals from the
// one-step residual variance. SES carries no trend, so the point forecast
// is constant across the horizon while the error widens.
func (m *Model) Forecast(steps int) ([]arima.ForecastResult, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	z80 := stats.NormalQuantile(0.9)
	z95 := stats.NormalQuantile(0.975)

	results := make([]arima.ForecastResult, steps)
	for h := 0; h < steps; h++ {
		// Var(h-step error) = sigma^2 * (1 + (h-1)*alpha^2)
		se := math.Sqrt(m.Variance * (1 + float64(h)*m.Alpha*m.Alpha))

		results[h] = arima.ForecastResult{
			PointForecast: m.Level,
			StandardError: se,
			Lower80:       m.Level - z80*se,
			Upper80:       m.Level + z80*se,
			Lower95:       m.Level - z95*se,
			Upper95:       m.Level + z95*se,
		}
	}

	return results, nil
}

func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}
