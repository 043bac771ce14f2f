// Package fitter fits one regression per (entity, target) pair over
// per-entity feature tables. Entities are fitted independently: a
// failure or an undersized table records a skip outcome and the run
// moves on. The run only fails when no pair at all produced a model.
package fitter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mbenes/groupfit/internal/features"
	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/pkg/models/linreg"
)

// DefaultMinRows is the smallest table worth fitting.
const DefaultMinRows = 3

var ErrTooFewRows = errors.New("too few rows to fit")

// TargetSpec names one regression: the target column and the feature
// columns it is regressed on.
type TargetSpec struct {
	Name   string
	Inputs []string
}

type Config struct {
	Targets []TargetSpec
	MinRows int
}

// Fit is one fitted (entity, target) model together with the rows it
// was trained on, kept for interval bootstrapping downstream.
type Fit struct {
	Entity string
	Target string
	Model  *linreg.Model
	Rows   []map[string]float64
	NRows  int
}

// Key is the outcome key for an (entity, target) pair.
func Key(entity, target string) string {
	return entity + "/" + target
}

// FitAll walks entities in sorted order and fits every configured
// target. It returns one outcome per (entity, target) pair and
// ErrNoResults when none succeeded.
func FitAll(tables map[string]*features.Table, cfg Config,
	monitor *pipeline.Monitor, telemetry *pipeline.Telemetry) ([]pipeline.Outcome[Fit], error) {

	if cfg.MinRows <= 0 {
		cfg.MinRows = DefaultMinRows
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("no targets configured")
	}

	entities := maps.Keys(tables)
	slices.Sort(entities)

	var outcomes []pipeline.Outcome[Fit]
	succeeded := 0
	for _, entity := range entities {
		table := tables[entity]
		for _, target := range cfg.Targets {
			key := Key(entity, target.Name)
			fit, err := fitOne(table, target, cfg.MinRows)
			telemetry.Observe("fit", err)
			if err != nil {
				outcomes = append(outcomes, pipeline.Fail[Fit](key, err))
				continue
			}
			monitor.Fit(key,
				zap.Int("rows", fit.NRows),
				zap.Float64("r_squared", fit.Model.RSquared))
			outcomes = append(outcomes, pipeline.Ok(key, fit))
			succeeded++
		}
	}
	if succeeded == 0 {
		return outcomes, pipeline.ErrNoResults
	}
	return outcomes, nil
}

func fitOne(table *features.Table, target TargetSpec, minRows int) (Fit, error) {
	if !slices.Contains(table.Columns, target.Name) {
		return Fit{}, fmt.Errorf("target %q not in feature table", target.Name)
	}
	for _, input := range target.Inputs {
		if !slices.Contains(table.Columns, input) {
			return Fit{}, fmt.Errorf("input %q not in feature table", input)
		}
		if input == target.Name {
			return Fit{}, fmt.Errorf("target %q listed as its own input", target.Name)
		}
	}
	if len(table.Rows) < minRows {
		return Fit{}, fmt.Errorf("%w: %d < %d", ErrTooFewRows, len(table.Rows), minRows)
	}

	targets := table.Column(target.Name)
	model := linreg.New(target.Inputs)
	if err := model.Fit(table.Rows, targets); err != nil {
		return Fit{}, fmt.Errorf("fit %s: %w", target.Name, err)
	}
	return Fit{
		Entity: table.Entity,
		Target: target.Name,
		Model:  model,
		Rows:   table.Rows,
		NRows:  len(table.Rows),
	}, nil
}

// ByEntity reindexes successful fits as entity -> target -> fit.
func ByEntity(outcomes []pipeline.Outcome[Fit]) map[string]map[string]Fit {
	out := make(map[string]map[string]Fit)
	for _, o := range outcomes {
		if o.Failed() {
			continue
		}
		byTarget, found := out[o.Value.Entity]
		if !found {
			byTarget = make(map[string]Fit)
			out[o.Value.Entity] = byTarget
		}
		byTarget[o.Value.Target] = o.Value
	}
	return out
}
