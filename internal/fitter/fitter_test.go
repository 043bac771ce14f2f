package fitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbenes/groupfit/internal/features"
	"github.com/mbenes/groupfit/internal/pipeline"
)

// linearTable builds a table where Revenue = 100 + 4*Fare exactly, with
// n rows.
func linearTable(entity string, n int) *features.Table {
	table := &features.Table{
		Entity:  entity,
		Columns: []string{"Fare", "Revenue"},
	}
	for i := 0; i < n; i++ {
		fare := 150.0 + 10.0*float64(i)
		table.Periods = append(table.Periods, 20231+i)
		table.Rows = append(table.Rows, map[string]float64{
			"Fare":    fare,
			"Revenue": 100 + 4*fare,
		})
	}
	return table
}

func testConfig() Config {
	return Config{
		Targets: []TargetSpec{{Name: "Revenue", Inputs: []string{"Fare"}}},
		MinRows: 3,
	}
}

func testHarness() (*pipeline.Monitor, *pipeline.Telemetry) {
	logger := zap.NewNop()
	return pipeline.NewMonitor(logger, pipeline.MonitorNone), pipeline.NewTelemetry(logger)
}

func TestFitAll_RecoversCoefficients(t *testing.T) {
	monitor, telemetry := testHarness()
	tables := map[string]*features.Table{"AA": linearTable("AA", 8)}

	outcomes, err := FitAll(tables, testConfig(), monitor, telemetry)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.False(t, outcomes[0].Failed())

	fit := outcomes[0].Value
	assert.Equal(t, "AA", fit.Entity)
	assert.Equal(t, "Revenue", fit.Target)
	assert.InDelta(t, 100.0, fit.Model.Coeffs[0], 1e-6)
	assert.InDelta(t, 4.0, fit.Model.Coeffs[1], 1e-6)
}

func TestFitAll_SkipsSmallTables(t *testing.T) {
	monitor, telemetry := testHarness()
	tables := map[string]*features.Table{
		"AA": linearTable("AA", 8),
		"ZZ": linearTable("ZZ", 2),
	}

	outcomes, err := FitAll(tables, testConfig(), monitor, telemetry)
	require.NoError(t, err, "one failing entity must not abort the run")
	require.Len(t, outcomes, 2)

	byKey := make(map[string]pipeline.Outcome[Fit])
	for _, o := range outcomes {
		byKey[o.Key] = o
	}
	assert.False(t, byKey[Key("AA", "Revenue")].Failed())
	assert.True(t, errors.Is(byKey[Key("ZZ", "Revenue")].Err, ErrTooFewRows))
}

func TestFitAll_AllFailed(t *testing.T) {
	monitor, telemetry := testHarness()
	tables := map[string]*features.Table{"ZZ": linearTable("ZZ", 2)}

	_, err := FitAll(tables, testConfig(), monitor, telemetry)
	assert.True(t, errors.Is(err, pipeline.ErrNoResults))
}

func TestFitAll_UnknownTarget(t *testing.T) {
	monitor, telemetry := testHarness()
	tables := map[string]*features.Table{"AA": linearTable("AA", 8)}
	cfg := Config{Targets: []TargetSpec{{Name: "LoadFactor", Inputs: []string{"Fare"}}}}

	_, err := FitAll(tables, cfg, monitor, telemetry)
	assert.True(t, errors.Is(err, pipeline.ErrNoResults))
}

func TestFitAll_DeterministicOrder(t *testing.T) {
	monitor, telemetry := testHarness()
	tables := map[string]*features.Table{
		"DL": linearTable("DL", 8),
		"AA": linearTable("AA", 8),
		"UA": linearTable("UA", 8),
	}

	outcomes, err := FitAll(tables, testConfig(), monitor, telemetry)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, Key("AA", "Revenue"), outcomes[0].Key)
	assert.Equal(t, Key("DL", "Revenue"), outcomes[1].Key)
	assert.Equal(t, Key("UA", "Revenue"), outcomes[2].Key)
}

func TestFitAll_Reproducible(t *testing.T) {
	monitor, telemetry := testHarness()
	tables := map[string]*features.Table{"AA": linearTable("AA", 10)}

	first, err := FitAll(tables, testConfig(), monitor, telemetry)
	require.NoError(t, err)
	second, err := FitAll(tables, testConfig(), monitor, telemetry)
	require.NoError(t, err)

	row := map[string]float64{"Fare": 201.5}
	p1, err := first[0].Value.Model.Predict(row)
	require.NoError(t, err)
	p2, err := second[0].Value.Model.Predict(row)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestByEntity(t *testing.T) {
	outcomes := []pipeline.Outcome[Fit]{
		pipeline.Ok(Key("AA", "Revenue"), Fit{Entity: "AA", Target: "Revenue"}),
		pipeline.Ok(Key("AA", "Emissions"), Fit{Entity: "AA", Target: "Emissions"}),
		pipeline.Fail[Fit](Key("DL", "Revenue"), errors.New("singular")),
	}

	indexed := ByEntity(outcomes)
	require.Len(t, indexed, 1)
	assert.Contains(t, indexed["AA"], "Revenue")
	assert.Contains(t, indexed["AA"], "Emissions")
}
