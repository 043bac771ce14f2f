package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/mbenes/groupfit/internal/cfg"
	"github.com/mbenes/groupfit/internal/dataset"
	"github.com/mbenes/groupfit/internal/dbg"
	"github.com/mbenes/groupfit/internal/features"
	"github.com/mbenes/groupfit/internal/fitter"
	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/internal/report"
	"github.com/mbenes/groupfit/internal/scenario"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	logger := dbg.NewDevLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)
	logger, _ = dbg.WithRun(logger)

	logger.Info("airfare analysis starting")
	defer logger.Info("done")

	if err := run(logger, *configPath); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, configPath string) error {
	c, err := cfg.Load(configPath)
	if err != nil {
		return err
	}
	if err := c.ValidateAirfare(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	flags := pipeline.MonitorNone
	if c.Verbose {
		flags = pipeline.MonitorAll
	}
	monitor := pipeline.NewMonitor(logger, flags)
	telemetry := pipeline.NewTelemetry(logger)
	defer telemetry.PrintStatistics()

	store := dataset.NewStore("", logger)
	if err := store.Connect(); err != nil {
		return err
	}
	defer store.Close()

	observations, err := store.LoadCarriers(ctx, dataset.CarrierSources{
		TicketsPath:        c.Airfare.TicketsPath,
		FinancialPath:      c.Airfare.FinancialPath,
		SustainabilityPath: c.Airfare.SustainabilityPath,
	})
	if err != nil {
		return err
	}
	observations = filterCarriers(observations, c.Airfare.Carriers)
	if len(observations) == 0 {
		return dataset.ErrNoRows
	}
	telemetry.Observe("load", nil)
	logger.Info("observations loaded",
		zap.Int("rows", len(observations)),
		zap.Int("carriers", len(dataset.Carriers(observations))))

	tables, err := features.Build(features.CarrierFrame(observations), features.CarrierSpec())
	if err != nil {
		return err
	}

	fits, err := fitter.FitAll(tables, fitter.Config{
		MinRows: c.Airfare.MinRows,
		Targets: []fitter.TargetSpec{
			{Name: features.ColRevenue, Inputs: []string{features.ColFare, features.LagColumn(features.ColFare)}},
			{Name: features.ColEmissions, Inputs: []string{features.ColFare}},
		},
	}, monitor, telemetry)
	if err != nil && !errors.Is(err, pipeline.ErrNoResults) {
		return err
	}

	writer := report.NewWriter(os.Stdout)
	if err := writer.Fits(fits); err != nil {
		return err
	}
	if errors.Is(err, pipeline.ErrNoResults) {
		return err
	}

	rng := rand.New(rand.NewSource(c.Seed))
	optimizer := scenario.NewOptimizer(
		features.ColFare, features.ColRevenue, features.ColEmissions, rng)

	entities := dataset.Carriers(observations)
	results, err := optimizer.Run(fitter.ByEntity(fits), entities, c.Airfare.Weights, monitor, telemetry)
	if len(results) > 0 {
		if werr := writer.Scenarios(results); werr != nil {
			return werr
		}
	}
	return err
}

// filterCarriers keeps only the configured carriers; an empty list
// keeps everything.
func filterCarriers(observations []dataset.CarrierObservation, carriers []string) []dataset.CarrierObservation {
	if len(carriers) == 0 {
		return observations
	}
	var kept []dataset.CarrierObservation
	for _, o := range observations {
		if slices.Contains(carriers, o.Carrier) {
			kept = append(kept, o)
		}
	}
	return kept
}
