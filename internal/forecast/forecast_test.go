package forecast

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/pkg/models/arima"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

func harness() (*pipeline.Monitor, *pipeline.Telemetry) {
	logger := zap.NewNop()
	return pipeline.NewMonitor(logger, pipeline.MonitorNone), pipeline.NewTelemetry(logger)
}

func TestRun_FourYearSeries(t *testing.T) {
	monitor, telemetry := harness()
	series, err := timeseries.NewWithPeriods(
		[]int{2021, 2022, 2023, 2024},
		[]float64{10, 12, 9, 15})
	require.NoError(t, err)

	f := New(Config{}, zap.NewNop())
	outcomes, err := f.Run(map[string]*timeseries.Series{"Measles": series}, monitor, telemetry)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for _, o := range outcomes {
		require.False(t, o.Failed(), "engine %s failed: %v", o.Key, o.Err)
		next := o.Value.Next()
		assert.GreaterOrEqual(t, next.PointForecast, 0.0)
		assert.GreaterOrEqual(t, next.Lower95, 0.0)
		assert.LessOrEqual(t, next.Lower95, next.PointForecast,
			"95%% interval must contain the point forecast")
		assert.GreaterOrEqual(t, next.Upper95, next.PointForecast)
		assert.LessOrEqual(t, next.Lower80, next.PointForecast)
		assert.GreaterOrEqual(t, next.Upper80, next.PointForecast)
	}
}

func TestRun_ShortCategorySkipped(t *testing.T) {
	monitor, telemetry := harness()
	long, err := timeseries.NewWithPeriods(
		[]int{2020, 2021, 2022, 2023, 2024},
		[]float64{40, 42, 39, 45, 44})
	require.NoError(t, err)
	short, err := timeseries.NewWithPeriods([]int{2023, 2024}, []float64{5, 7})
	require.NoError(t, err)

	f := New(Config{}, zap.NewNop())
	outcomes, err := f.Run(map[string]*timeseries.Series{
		"Influenza": long,
		"Rubella":   short,
	}, monitor, telemetry)
	require.NoError(t, err, "a short category must not fail the run")
	require.Len(t, outcomes, 4)

	for _, o := range outcomes {
		if o.Value.Category == "Rubella" || o.Key == Key("Rubella", EngineARIMA) || o.Key == Key("Rubella", EngineSES) {
			if !o.Failed() {
				t.Errorf("%s: short category should be skipped", o.Key)
				continue
			}
			assert.True(t, errors.Is(o.Err, ErrTooShort))
		} else {
			assert.False(t, o.Failed(), "%s: %v", o.Key, o.Err)
		}
	}
}

func TestRun_AllShort(t *testing.T) {
	monitor, telemetry := harness()
	short, err := timeseries.NewWithPeriods([]int{2024}, []float64{5})
	require.NoError(t, err)

	f := New(Config{}, zap.NewNop())
	_, err = f.Run(map[string]*timeseries.Series{"Rubella": short}, monitor, telemetry)
	assert.True(t, errors.Is(err, pipeline.ErrNoResults))
}

func TestRun_Deterministic(t *testing.T) {
	monitor, telemetry := harness()
	rng := rand.New(rand.NewSource(11))
	values := make([]float64, 30)
	periods := make([]int, 30)
	level := 100.0
	for i := range values {
		level += rng.NormFloat64() * 5
		if level < 0 {
			level = 0
		}
		values[i] = level
		periods[i] = 1995 + i
	}
	series, err := timeseries.NewWithPeriods(periods, values)
	require.NoError(t, err)

	run := func() []pipeline.Outcome[Result] {
		f := New(Config{}, zap.NewNop())
		outcomes, err := f.Run(map[string]*timeseries.Series{"Influenza": series}, monitor, telemetry)
		require.NoError(t, err)
		return outcomes
	}

	first, second := run(), run()
	require.Len(t, first, len(second))
	for i := range first {
		require.False(t, first[i].Failed())
		assert.Equal(t, first[i].Value.Next(), second[i].Value.Next())
	}
}

func TestClampNonNegative(t *testing.T) {
	steps := clampNonNegative([]arima.ForecastResult{{
		PointForecast: -2,
		Lower80:       -6,
		Upper80:       1,
		Lower95:       -10,
		Upper95:       3,
	}})
	require.Len(t, steps, 1)
	assert.Equal(t, 0.0, steps[0].PointForecast)
	assert.Equal(t, 0.0, steps[0].Lower80)
	assert.Equal(t, 0.0, steps[0].Lower95)
	assert.Equal(t, 1.0, steps[0].Upper80)
	assert.Equal(t, 3.0, steps[0].Upper95)
	assert.LessOrEqual(t, steps[0].Lower95, steps[0].PointForecast)
	assert.LessOrEqual(t, steps[0].PointForecast, steps[0].Upper95)
}
