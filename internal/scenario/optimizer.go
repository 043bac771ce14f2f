// Package scenario searches for the fare balancing predicted revenue
// against predicted emissions under named weight pairs. The search is a
// bounded shrinking-step local search started at the entity's mean
// observed fare: it honors the observed [min, max] fare bounds but is
// not guaranteed to find a global optimum when the objective is
// non-convex, and its answer depends on the starting point. Results
// carry the searched bounds so reports can state them.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/mbenes/groupfit/internal/fitter"
	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/pkg/models/linreg"
)

var (
	ErrNoPrices      = errors.New("no observed prices for entity")
	ErrMissingModels = errors.New("entity lacks revenue or emissions model")
)

// Weights is one named trade-off between revenue and emissions.
type Weights struct {
	Name      string  `yaml:"name"`
	Price     float64 `yaml:"price"`
	Emissions float64 `yaml:"emissions"`
}

// DefaultWeights mirrors the three stances the analysis reports on.
func DefaultWeights() []Weights {
	return []Weights{
		{Name: "revenue_first", Price: 0.8, Emissions: 0.2},
		{Name: "balanced", Price: 0.5, Emissions: 0.5},
		{Name: "green_first", Price: 0.2, Emissions: 0.8},
	}
}

// Result is one entity's optimized fare under one weight pair.
type Result struct {
	Entity   string
	Scenario string

	Price    float64
	PriceMin float64
	PriceMax float64

	Revenue           float64
	RevenueInterval   linreg.Interval
	Emissions         float64
	EmissionsInterval linreg.Interval

	Objective float64
}

// Optimizer evaluates weight scenarios against a pair of fitted models
// per entity. The rng drives the bootstrap intervals on the reported
// revenue and emissions; inject a seeded source for reproducible runs.
type Optimizer struct {
	PriceColumn   string
	RevenueTarget string
	EmissionTgt   string

	Confidence float64
	Samples    int

	rng *rand.Rand
}

func NewOptimizer(priceColumn, revenueTarget, emissionTarget string, rng *rand.Rand) *Optimizer {
	return &Optimizer{
		PriceColumn:   priceColumn,
		RevenueTarget: revenueTarget,
		EmissionTgt:   emissionTarget,
		Confidence:    0.95,
		Samples:       1000,
		rng:           rng,
	}
}

// searchSteps bounds the shrinking-step refinement.
const searchSteps = 60

// Run evaluates every weight pair for every entity that has both
// models, in the order fits arrive. Entities missing a model are
// recorded as failed outcomes; ErrNoResults when nothing succeeded.
func (o *Optimizer) Run(fits map[string]map[string]fitter.Fit, entities []string, weights []Weights,
	monitor *pipeline.Monitor, telemetry *pipeline.Telemetry) ([]pipeline.Outcome[Result], error) {

	var outcomes []pipeline.Outcome[Result]
	succeeded := 0
	for _, entity := range entities {
		byTarget := fits[entity]
		revenue, hasRevenue := byTarget[o.RevenueTarget]
		emissions, hasEmissions := byTarget[o.EmissionTgt]
		if !hasRevenue || !hasEmissions {
			for _, w := range weights {
				key := scenarioKey(entity, w.Name)
				telemetry.UnitSkipped("scenario")
				outcomes = append(outcomes, pipeline.Fail[Result](key, ErrMissingModels))
			}
			continue
		}

		for _, w := range weights {
			key := scenarioKey(entity, w.Name)
			result, err := o.optimize(entity, revenue, emissions, w)
			telemetry.Observe("scenario", err)
			if err != nil {
				outcomes = append(outcomes, pipeline.Fail[Result](key, err))
				continue
			}
			monitor.Scenario(key,
				zap.Float64("price", result.Price),
				zap.Float64("objective", result.Objective))
			outcomes = append(outcomes, pipeline.Ok(key, result))
			succeeded++
		}
	}
	if succeeded == 0 {
		return outcomes, pipeline.ErrNoResults
	}
	return outcomes, nil
}

func (o *Optimizer) optimize(entity string, revenue, emissions fitter.Fit, w Weights) (Result, error) {
	prices := observed(revenue.Rows, o.PriceColumn)
	if len(prices) == 0 {
		return Result{}, ErrNoPrices
	}
	lo, hi, start := bounds(prices)

	// Non-price features are held at the entity's observed means while
	// the fare varies.
	revenueRow := meanRow(revenue.Rows, revenue.Model.Features)
	emissionRow := meanRow(emissions.Rows, emissions.Model.Features)

	norm, err := o.normalization(revenue.Model, emissions.Model, revenueRow, emissionRow, lo, hi)
	if err != nil {
		return Result{}, err
	}

	objective := func(price float64) (float64, error) {
		r, err := o.predictAt(revenue.Model, revenueRow, price)
		if err != nil {
			return 0, err
		}
		e, err := o.predictAt(emissions.Model, emissionRow, price)
		if err != nil {
			return 0, err
		}
		return w.Emissions*norm.emissions(e) - w.Price*norm.revenue(r), nil
	}

	best, bestValue, err := localSearch(objective, lo, hi, start)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Entity:    entity,
		Scenario:  w.Name,
		Price:     best,
		PriceMin:  lo,
		PriceMax:  hi,
		Objective: bestValue,
	}

	revenueRow[o.PriceColumn] = best
	result.Revenue, result.RevenueInterval, err = revenue.Model.PredictInterval(
		revenueRow, o.Confidence, o.rng, o.Samples)
	if err != nil {
		return Result{}, fmt.Errorf("revenue interval: %w", err)
	}
	emissionRow[o.PriceColumn] = best
	result.Emissions, result.EmissionsInterval, err = emissions.Model.PredictInterval(
		emissionRow, o.Confidence, o.rng, o.Samples)
	if err != nil {
		return Result{}, fmt.Errorf("emissions interval: %w", err)
	}
	return result, nil
}

// localSearch walks from start with a shrinking step, clamped to
// [lo, hi]. It converges to a local minimum only.
func localSearch(objective func(float64) (float64, error), lo, hi, start float64) (float64, float64, error) {
	if hi <= lo {
		v, err := objective(lo)
		return lo, v, err
	}

	price := clamp(start, lo, hi)
	value, err := objective(price)
	if err != nil {
		return 0, 0, err
	}

	step := (hi - lo) / 10
	for i := 0; i < searchSteps && step > (hi-lo)*1e-6; i++ {
		moved := false
		for _, candidate := range []float64{price - step, price + step} {
			c := clamp(candidate, lo, hi)
			v, err := objective(c)
			if err != nil {
				return 0, 0, err
			}
			if v < value {
				price, value = c, v
				moved = true
			}
		}
		if !moved {
			step /= 2
		}
	}
	return price, value, nil
}

type normalizer struct {
	revenue   func(float64) float64
	emissions func(float64) float64
}

// normalization maps predictions onto [0, 1] using the min/max of each
// model over a grid spanning the observed price range.
func (o *Optimizer) normalization(revModel, emiModel *linreg.Model,
	revenueRow, emissionRow map[string]float64, lo, hi float64) (normalizer, error) {

	const gridPoints = 101
	minR, maxR := math.Inf(1), math.Inf(-1)
	minE, maxE := math.Inf(1), math.Inf(-1)
	for i := 0; i < gridPoints; i++ {
		price := lo + (hi-lo)*float64(i)/float64(gridPoints-1)
		r, err := o.predictAt(revModel, revenueRow, price)
		if err != nil {
			return normalizer{}, err
		}
		e, err := o.predictAt(emiModel, emissionRow, price)
		if err != nil {
			return normalizer{}, err
		}
		minR, maxR = math.Min(minR, r), math.Max(maxR, r)
		minE, maxE = math.Min(minE, e), math.Max(maxE, e)
	}
	return normalizer{
		revenue:   minMaxScale(minR, maxR),
		emissions: minMaxScale(minE, maxE),
	}, nil
}

func minMaxScale(lo, hi float64) func(float64) float64 {
	span := hi - lo
	return func(v float64) float64 {
		if span <= 0 {
			return 0
		}
		return (v - lo) / span
	}
}

func (o *Optimizer) predictAt(model *linreg.Model, row map[string]float64, price float64) (float64, error) {
	row[o.PriceColumn] = price
	return model.Predict(row)
}

// meanRow holds every model feature at its observed mean.
func meanRow(rows []map[string]float64, featureNames []string) map[string]float64 {
	row := make(map[string]float64, len(featureNames))
	for _, name := range featureNames {
		sum := 0.0
		for _, r := range rows {
			sum += r[name]
		}
		row[name] = sum / float64(len(rows))
	}
	return row
}

func observed(rows []map[string]float64, column string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, found := r[column]; found {
			out = append(out, v)
		}
	}
	return out
}

func bounds(prices []float64) (lo, hi, mean float64) {
	lo, hi = prices[0], prices[0]
	sum := 0.0
	for _, p := range prices {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
		sum += p
	}
	return lo, hi, sum / float64(len(prices))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func scenarioKey(entity, scenario string) string {
	return entity + "/" + scenario
}
