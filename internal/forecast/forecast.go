// Package forecast produces one-step-ahead case-count forecasts per
// surveillance category from two engines: an auto-order ARIMA and
// simple exponential smoothing. Case counts cannot be negative, so
// every point forecast and interval bound is clamped at zero.
// Categories with too little history are skipped with a warning, never
// a crash.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/pkg/models/arima"
	"github.com/mbenes/groupfit/pkg/models/autofit"
	"github.com/mbenes/groupfit/pkg/models/sarima"
	"github.com/mbenes/groupfit/pkg/models/smooth"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

// MinPeriods is the least history a category needs to be forecast.
const MinPeriods = 3

var ErrTooShort = errors.New("not enough periods of history")

// Engine names as they appear in outcome keys and reports.
const (
	EngineARIMA = "arima"
	EngineSES   = "ses"
)

type Config struct {
	MinPeriods int
	Horizon    int

	// Seasonal enables the SARIMA order search, for monthly series.
	Seasonal  bool
	SeasonalM int
}

// Result is one engine's forecast for one category. The slice holds
// one entry per horizon step.
type Result struct {
	Category string
	Engine   string
	Order    sarima.Order
	Steps    []arima.ForecastResult
}

// Next is the one-step-ahead forecast.
func (r Result) Next() arima.ForecastResult {
	return r.Steps[0]
}

type Forecaster struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Forecaster {
	if cfg.MinPeriods <= 0 {
		cfg.MinPeriods = MinPeriods
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 1
	}
	return &Forecaster{cfg: cfg, logger: logger}
}

// Key is the outcome key for a (category, engine) pair.
func Key(category, engine string) string {
	return category + "/" + engine
}

// Run forecasts every category in sorted order with both engines. A
// category below the history threshold yields one skipped outcome per
// engine and a warning; ErrNoResults when no forecast at all succeeded.
func (f *Forecaster) Run(byCategory map[string]*timeseries.Series,
	monitor *pipeline.Monitor, telemetry *pipeline.Telemetry) ([]pipeline.Outcome[Result], error) {

	categories := maps.Keys(byCategory)
	slices.Sort(categories)

	var outcomes []pipeline.Outcome[Result]
	succeeded := 0
	for _, category := range categories {
		series := byCategory[category]
		if series.Len() < f.cfg.MinPeriods {
			f.logger.Warn("category skipped",
				zap.String("category", category),
				zap.Int("periods", series.Len()),
				zap.Int("min_periods", f.cfg.MinPeriods))
			for _, engine := range []string{EngineARIMA, EngineSES} {
				telemetry.UnitSkipped("forecast")
				outcomes = append(outcomes, pipeline.Fail[Result](
					Key(category, engine),
					fmt.Errorf("%w: %d < %d", ErrTooShort, series.Len(), f.cfg.MinPeriods)))
			}
			continue
		}

		for _, engine := range []string{EngineARIMA, EngineSES} {
			key := Key(category, engine)
			result, err := f.forecastOne(category, engine, series)
			telemetry.Observe("forecast", err)
			if err != nil {
				outcomes = append(outcomes, pipeline.Fail[Result](key, err))
				continue
			}
			monitor.Forecast(key,
				zap.Float64("point", result.Next().PointForecast),
				zap.Float64("upper95", result.Next().Upper95))
			outcomes = append(outcomes, pipeline.Ok(key, result))
			succeeded++
		}
	}
	if succeeded == 0 {
		return outcomes, pipeline.ErrNoResults
	}
	return outcomes, nil
}

func (f *Forecaster) forecastOne(category, engine string, series *timeseries.Series) (Result, error) {
	result := Result{Category: category, Engine: engine}

	switch engine {
	case EngineARIMA:
		cfg := autofit.DefaultConfig()
		cfg.Seasonal = f.cfg.Seasonal
		cfg.SeasonalM = f.cfg.SeasonalM
		fitted, err := autofit.Fit(series, cfg)
		if err != nil {
			return Result{}, fmt.Errorf("auto order search: %w", err)
		}
		steps, err := fitted.Forecast(f.cfg.Horizon)
		if err != nil {
			return Result{}, err
		}
		result.Order = fitted.Order
		result.Steps = clampNonNegative(steps)
	case EngineSES:
		model := smooth.New()
		if err := model.Fit(series); err != nil {
			return Result{}, fmt.Errorf("smoothing fit: %w", err)
		}
		steps, err := model.Forecast(f.cfg.Horizon)
		if err != nil {
			return Result{}, err
		}
		result.Steps = clampNonNegative(steps)
	default:
		return Result{}, fmt.Errorf("unknown engine %q", engine)
	}
	return result, nil
}

// clampNonNegative floors forecasts and bounds at zero. Clamping is
// monotone, so lower <= point <= upper still holds afterwards.
func clampNonNegative(steps []arima.ForecastResult) []arima.ForecastResult {
	out := make([]arima.ForecastResult, len(steps))
	for i, s := range steps {
		s.PointForecast = math.Max(0, s.PointForecast)
		s.Lower80 = math.Max(0, s.Lower80)
		s.Upper80 = math.Max(0, s.Upper80)
		s.Lower95 = math.Max(0, s.Lower95)
		s.Upper95 = math.Max(0, s.Upper95)
		out[i] = s
	}
	return out
}
