package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/mbenes/groupfit/internal/cfg"
	"github.com/mbenes/groupfit/internal/dataset"
	"github.com/mbenes/groupfit/internal/dbg"
	"github.com/mbenes/groupfit/internal/forecast"
	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/internal/report"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	logger := dbg.NewDevLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)
	logger, _ = dbg.WithRun(logger)

	logger.Info("surveillance forecasting starting")
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
	if err := c.ValidateEpiscope(); err != nil {
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

	rows, err := loadSurveillance(ctx, logger, c)
	if err != nil {
		return err
	}
	telemetry.Observe("load", nil)

	byCategory := make(map[string]*timeseries.Series)
	for _, category := range dataset.Categories(rows) {
		if len(c.Episcope.Categories) > 0 && !slices.Contains(c.Episcope.Categories, category) {
			continue
		}
		if c.Episcope.Seasonal {
			byCategory[category] = dataset.MonthlySeries(rows, category)
		} else {
			byCategory[category] = dataset.YearlySeries(rows, category)
		}
	}
	logger.Info("surveillance loaded",
		zap.Int("rows", len(rows)),
		zap.Int("categories", len(byCategory)))

	forecaster := forecast.New(forecast.Config{
		MinPeriods: c.Episcope.MinPeriods,
		Horizon:    c.Episcope.Horizon,
		Seasonal:   c.Episcope.Seasonal,
		SeasonalM:  c.Episcope.SeasonalM,
	}, logger)

	outcomes, err := forecaster.Run(byCategory, monitor, telemetry)
	if len(outcomes) > 0 {
		if werr := report.NewWriter(os.Stdout).Forecasts(outcomes); werr != nil {
			return werr
		}
	}
	return err
}

// loadSurveillance picks the loader from the file extension: .xlsx goes
// through the workbook reader, everything else through DuckDB.
func loadSurveillance(ctx context.Context, logger *zap.Logger, c *cfg.Config) ([]dataset.SurveillanceRow, error) {
	path := c.Episcope.SurveillancePath
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return dataset.LoadSurveillanceWorkbook(path, c.Episcope.WorkbookSheet, logger)
	}

	store := dataset.NewStore("", logger)
	if err := store.Connect(); err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadSurveillance(ctx, path)
}
