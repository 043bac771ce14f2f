// Package autofit selects ARIMA or seasonal ARIMA orders automatically:
// differencing by stationarity testing, (p,q) by stepwise AICc search.
package autofit

import (
	"errors"
	"math"

	"github.com/mbenes/groupfit/pkg/models/arima"
	"github.com/mbenes/groupfit/pkg/models/sarima"
	"github.com/mbenes/groupfit/pkg/stats"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

var ErrNoModel = errors.New("no candidate model could be fitted")

// Config bounds the order search.
type Config struct {
	MaxP  int
	MaxD  int
	MaxQ  int
	MaxSP int
	MaxSD int
	MaxSQ int

	// Seasonal enables the SARIMA search; SeasonalM is the period.
	Seasonal  bool
	SeasonalM int
}

func DefaultConfig() Config {
	return Config{
		MaxP:  3,
		MaxD:  2,
		MaxQ:  3,
		MaxSP: 1,
		MaxSD: 1,
		MaxSQ: 1,
	}
}

// Result is the selected model. Exactly one of Model and SeasonalModel is
// set, depending on IsSeasonal.
type Result struct {
	Model         *arima.Model
	SeasonalModel *sarima.Model

	Order           sarima.Order
	AICc            float64
	ModelsEvaluated int
	IsSeasonal      bool
}

// Forecast forwards to the selected model.
func (r *Result) Forecast(steps int) ([]arima.ForecastResult, error) {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.Forecast(steps)
	}
	if r.Model != nil {
		return r.Model.Forecast(steps)
	}
	return nil, ErrNoModel
}

func (r *Result) Residuals() []float64 {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.Residuals()
	}
	if r.Model != nil {
		return r.Model.Residuals()
	}
	return nil
}

// Fit selects and fits the best model for the series.
func Fit(series *timeseries.Series, cfg Config) (*Result, error) {
	d := determineDifferencing(series, cfg.MaxD)

	if cfg.Seasonal && cfg.SeasonalM > 1 {
		sd := determineSeasonalDifferencing(series, cfg.MaxSD, cfg.SeasonalM)
		return searchSeasonal(series, d, sd, cfg)
	}
	return searchNonSeasonal(series, d, cfg)
}

// determineDifferencing applies the ADF test repeatedly, differencing until
// the series tests stationary or the limit is hit. Series too short for the
// test are treated as not needing differencing.
func determineDifferencing(series *timeseries.Series, maxD int) int {
	current := series
	for d := 0; d < maxD; d++ {
		result := stats.ADF(current, 0)
		if result == nil || result.IsStationary {
			return d
		}
		current = current.Diff()
		if current.Len() < 10 {
			return d
		}
	}
	return maxD
}

// determineSeasonalDifferencing uses the autocorrelation at the seasonal
// lag as the decision signal.
func determineSeasonalDifferencing(series *timeseries.Series, maxSD, period int) int {
	if maxSD < 1 {
		return 0
	}
	acf := stats.ACF(series, period*2)
	if acf == nil || len(acf) <= period {
		return 0
	}
	if math.Abs(acf[period]) > 0.5 {
		return 1
	}
	return 0
}

type spec struct {
	p, q, sp, sq int
}

func searchNonSeasonal(series *timeseries.Series, d int, cfg Config) (*Result, error) {
	start := []spec{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}, {1, 1, 0, 0}, {2, 2, 0, 0}}

	var best *arima.Model
	bestSpec := spec{}
	bestAICc := math.Inf(1)
	evaluated := 0

	try := func(s spec) {
		if s.p < 0 || s.p > cfg.MaxP || s.q < 0 || s.q > cfg.MaxQ {
			return
		}
		m := arima.New(s.p, d, s.q)
		if err := m.Fit(series); err != nil {
			return
		}
		evaluated++
		if m.AICc < bestAICc {
			bestAICc = m.AICc
			bestSpec = s
			best = m
		}
	}

	for _, s := range start {
		try(s)
	}

	improved := best != nil
	for improved {
		prev := bestAICc
		for _, s := range []spec{
			{bestSpec.p + 1, bestSpec.q, 0, 0},
			{bestSpec.p - 1, bestSpec.q, 0, 0},
			{bestSpec.p, bestSpec.q + 1, 0, 0},
			{bestSpec.p, bestSpec.q - 1, 0, 0},
			{bestSpec.p + 1, bestSpec.q + 1, 0, 0},
			{bestSpec.p - 1, bestSpec.q - 1, 0, 0},
		} {
			try(s)
		}
		improved = bestAICc < prev
	}

	if best == nil {
		return nil, ErrNoModel
	}

	return &Result{
		Model:           best,
		Order:           sarima.Order{P: bestSpec.p, D: d, Q: bestSpec.q},
		AICc:            bestAICc,
		ModelsEvaluated: evaluated,
	}, nil
}

func searchSeasonal(series *timeseries.Series, d, sd int, cfg Config) (*Result, error) {
	start := []spec{
		{0, 0, 0, 0},
		{1, 0, 1, 0},
		{0, 1, 0, 1},
		{1, 1, 1, 1},
	}

	var best *sarima.Model
	bestSpec := spec{}
	bestAICc := math.Inf(1)
	evaluated := 0

	try := func(s spec) {
		if s.p < 0 || s.p > cfg.MaxP || s.q < 0 || s.q > cfg.MaxQ ||
			s.sp < 0 || s.sp > cfg.MaxSP || s.sq < 0 || s.sq > cfg.MaxSQ {
			return
		}
		m := sarima.New(s.p, d, s.q, s.sp, sd, s.sq, cfg.SeasonalM)
		if err := m.Fit(series); err != nil {
			return
		}
		evaluated++
		if m.AICc < bestAICc {
			bestAICc = m.AICc
			bestSpec = s
			best = m
		}
	}

	for _, s := range start {
		try(s)
	}

	improved := best != nil
	for improved {
		prev := bestAICc
		for _, s := range []spec{
			{bestSpec.p + 1, bestSpec.q, bestSpec.sp, bestSpec.sq},
			{bestSpec.p - 1, bestSpec.q, bestSpec.sp, bestSpec.sq},
			{bestSpec.p, bestSpec.q + 1, bestSpec.sp, bestSpec.sq},
			{bestSpec.p, bestSpec.q - 1, bestSpec.sp, bestSpec.sq},
			{bestSpec.p, bestSpec.q, bestSpec.sp + 1, bestSpec.sq},
			{bestSpec.p, bestSpec.q, bestSpec.sp - 1, bestSpec.sq},
			{bestSpec.p, bestSpec.q, bestSpec.sp, bestSpec.sq + 1},
			{bestSpec.p, bestSpec.q, bestSpec.sp, bestSpec.sq - 1},
		} {
			try(s)
		}
		improved = bestAICc < prev
	}

	if best == nil {
		// A seasonal model may be unfittable on a short panel; fall back
		// to the non-seasonal search rather than failing the category.
		return searchNonSeasonal(series, d, cfg)
	}

	return &Result{
		SeasonalModel: best,
		Order: sarima.Order{
			P: bestSpec.p, D: d, Q: bestSpec.q,
			SP: bestSpec.sp, SD: sd, SQ: bestSpec.sq, M: cfg.SeasonalM,
		},
		AICc:            bestAICc,
		ModelsEvaluated: evaluated,
		IsSeasonal:      true,
	}, nil
}
