// Package cfg holds the run configuration for both commands. Values
// come from a YAML file, then environment variables override, then
// defaults fill the gaps. Entity lists and file paths are explicit
// here instead of hard-coded in the pipelines.
package cfg

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/mbenes/groupfit/internal/scenario"
)

var ErrMissingPath = errors.New("required input path not configured")

type Config struct {
	// Seed drives every stochastic routine so runs are reproducible.
	Seed int64 `yaml:"seed" envconfig:"GROUPFIT_SEED"`

	// Verbose enables per-unit monitor logging for every stage.
	Verbose bool `yaml:"verbose" envconfig:"GROUPFIT_VERBOSE"`

	Airfare  Airfare  `yaml:"airfare"`
	Episcope Episcope `yaml:"episcope"`
}

// Airfare configures the carrier analysis command.
type Airfare struct {
	TicketsPath        string `yaml:"tickets_path" envconfig:"GROUPFIT_TICKETS_PATH"`
	FinancialPath      string `yaml:"financial_path" envconfig:"GROUPFIT_FINANCIAL_PATH"`
	SustainabilityPath string `yaml:"sustainability_path" envconfig:"GROUPFIT_SUSTAINABILITY_PATH"`

	// Carriers optionally restricts the analysis; empty means all.
	Carriers []string `yaml:"carriers"`

	MinRows int                `yaml:"min_rows" envconfig:"GROUPFIT_MIN_ROWS"`
	Weights []scenario.Weights `yaml:"weights"`
}

// Episcope configures the surveillance forecasting command.
type Episcope struct {
	SurveillancePath string `yaml:"surveillance_path" envconfig:"GROUPFIT_SURVEILLANCE_PATH"`

	// WorkbookSheet selects the sheet when the path is an .xlsx file;
	// empty means the first sheet.
	WorkbookSheet string `yaml:"workbook_sheet" envconfig:"GROUPFIT_WORKBOOK_SHEET"`

	// Categories optionally restricts the forecast; empty means all.
	Categories []string `yaml:"categories"`

	MinPeriods int  `yaml:"min_periods" envconfig:"GROUPFIT_MIN_PERIODS"`
	Horizon    int  `yaml:"horizon" envconfig:"GROUPFIT_HORIZON"`
	Seasonal   bool `yaml:"seasonal" envconfig:"GROUPFIT_SEASONAL"`
	SeasonalM  int  `yaml:"seasonal_period" envconfig:"GROUPFIT_SEASONAL_PERIOD"`
}

// Load reads the YAML file at path (skipped when path is empty),
// applies environment overrides and defaults. Validation is per
// command, since each binary needs only its own inputs.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(raw, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := envconfig.Process("groupfit", &c); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Airfare.MinRows <= 0 {
		c.Airfare.MinRows = 3
	}
	if len(c.Airfare.Weights) == 0 {
		c.Airfare.Weights = scenario.DefaultWeights()
	}
	if c.Episcope.MinPeriods <= 0 {
		c.Episcope.MinPeriods = 3
	}
	if c.Episcope.Horizon <= 0 {
		c.Episcope.Horizon = 1
	}
	if c.Episcope.Seasonal && c.Episcope.SeasonalM <= 0 {
		c.Episcope.SeasonalM = 12
	}
}

// ValidateAirfare checks the inputs the airfare command needs.
func (c *Config) ValidateAirfare() error {
	for name, path := range map[string]string{
		"tickets_path":        c.Airfare.TicketsPath,
		"financial_path":      c.Airfare.FinancialPath,
		"sustainability_path": c.Airfare.SustainabilityPath,
	} {
		if path == "" {
			return fmt.Errorf("%w: %s", ErrMissingPath, name)
		}
	}
	for _, w := range c.Airfare.Weights {
		if w.Name == "" {
			return errors.New("scenario weight without a name")
		}
		if w.Price < 0 || w.Emissions < 0 || w.Price+w.Emissions == 0 {
			return fmt.Errorf("scenario %q: weights must be non-negative and not both zero", w.Name)
		}
	}
	return nil
}

// ValidateEpiscope checks the inputs the episcope command needs.
func (c *Config) ValidateEpiscope() error {
	if c.Episcope.SurveillancePath == "" {
		return fmt.Errorf("%w: surveillance_path", ErrMissingPath)
	}
	if c.Episcope.Seasonal && c.Episcope.SeasonalM < 2 {
		return fmt.Errorf("seasonal period %d too small", c.Episcope.SeasonalM)
	}
	return nil
}
