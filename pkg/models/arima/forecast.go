package arima

import (
	"math"

	"github.com/mbenes/groupfit/pkg/stats"
)

// ForecastResult carries a point forecast together with its standard error
// and the usual 80/95 interval pair.
type ForecastResult struct {
	PointForecast float64
	StandardError float64
	Lower80       float64
	Upper80       float64
	Lower95       float64
	Upper95       float64
}

// Forecast generates forecasts with 80% and 95% intervals. The standard
// error grows with the horizon for integrated series.
func (m *Model) Forecast(steps int) ([]ForecastResult, error) {
	points, err := m.Predict(steps)
	if err != nil {
		return nil, err
	}

	z80 := stats.NormalQuantile(0.9)
	z95 := stats.NormalQuantile(0.975)

	results := make([]ForecastResult, steps)
	for h := 0; h < steps; h++ {
		se := math.Sqrt(m.Variance)
		if m.Order.D > 0 {
			se *= math.Sqrt(float64(h + 1))
		}

		results[h] = ForecastResult{
			PointForecast: points[h],
			StandardError: se,
			Lower80:       points[h] - z80*se,
			Upper80:       points[h] + z80*se,
			Lower95:       points[h] - z95*se,
			Upper95:       points[h] + z95*se,
		}
	}

	return results, nil
}
