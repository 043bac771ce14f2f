package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenes/groupfit/internal/fitter"
	"github.com/mbenes/groupfit/internal/forecast"
	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/internal/scenario"
	"github.com/mbenes/groupfit/pkg/models/arima"
	"github.com/mbenes/groupfit/pkg/models/linreg"
)

func TestFits_TableContents(t *testing.T) {
	model := linreg.New([]string{"Fare"})
	rows := []map[string]float64{
		{"Fare": 100}, {"Fare": 110}, {"Fare": 120}, {"Fare": 130},
	}
	require.NoError(t, model.Fit(rows, []float64{500, 540, 580, 620}))

	outcomes := []pipeline.Outcome[fitter.Fit]{
		pipeline.Ok("AA/Revenue", fitter.Fit{Entity: "AA", Target: "Revenue", Model: model, NRows: 4}),
		pipeline.Fail[fitter.Fit]("ZZ/Revenue", errors.New("too few rows")),
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Fits(outcomes))

	out := buf.String()
	assert.Contains(t, out, "AA/Revenue")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "ZZ/Revenue")
	assert.Contains(t, out, "too few rows")
}

func TestScenarios_MoneyFormattingAndCaveat(t *testing.T) {
	outcomes := []pipeline.Outcome[scenario.Result]{
		pipeline.Ok("AA/balanced", scenario.Result{
			Entity:            "AA",
			Scenario:          "balanced",
			Price:             183.456,
			PriceMin:          100,
			PriceMax:          190,
			Revenue:           1917.28,
			RevenueInterval:   linreg.Interval{Lower: 1900.1, Upper: 1930.9},
			Emissions:         416.9,
			EmissionsInterval: linreg.Interval{Lower: 410, Upper: 425},
		}),
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Scenarios(outcomes))

	out := buf.String()
	assert.Contains(t, out, "183.46", "fares are rounded to cents")
	assert.Contains(t, out, "AA/balanced")
	assert.Contains(t, out, "bounded local search",
		"the report must state the optimality caveat")
}

func TestForecasts_Table(t *testing.T) {
	outcomes := []pipeline.Outcome[forecast.Result]{
		pipeline.Ok("Measles/arima", forecast.Result{
			Category: "Measles",
			Engine:   forecast.EngineARIMA,
			Steps: []arima.ForecastResult{{
				PointForecast: 14.2,
				Lower80:       9.1, Upper80: 19.3,
				Lower95: 6.4, Upper95: 22.0,
			}},
		}),
		pipeline.Fail[forecast.Result]("Rubella/arima", forecast.ErrTooShort),
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Forecasts(outcomes))

	out := buf.String()
	assert.Contains(t, out, "Measles/arima")
	assert.Contains(t, out, "14.2")
	assert.Contains(t, out, "[6.4, 22.0]")
	assert.True(t, strings.Contains(out, "Rubella/arima"))
}
