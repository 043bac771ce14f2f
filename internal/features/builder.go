// Package features partitions a merged dataset by entity and derives
// per-period aggregated and one-period-lagged feature tables. The first
// period of every group is dropped (its lag is undefined), as is any row
// left with missing values; no imputation is performed.
package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrNoEntities    = errors.New("no entities in dataset")
	ErrMissingColumn = errors.New("column not present in dataset")
)

// Spec names the grouping keys and the per-metric aggregation and
// lagging choices for one feature build.
type Spec struct {
	Entity string   // entity key column
	Period string   // sortable integer period column
	Mean   []string // metrics aggregated by per-period mean
	Sum    []string // metrics aggregated by per-period sum
	Lag    []string // aggregated metrics to add as one-period lags
}

// Table is one entity's complete-rows feature table, ordered by period.
type Table struct {
	Entity  string
	Columns []string
	Periods []int
	Rows    []map[string]float64
}

// LagColumn is the feature name under which a lagged metric appears.
func LagColumn(metric string) string {
	return metric + "_lag1"
}

// Build produces one feature table per entity value found in df,
// keyed by entity. Entities whose table ends up empty after dropping
// incomplete rows are omitted.
func Build(df dataframe.DataFrame, spec Spec) (map[string]*Table, error) {
	if err := checkColumns(df, spec); err != nil {
		return nil, err
	}

	entities := uniqueRecords(df.Col(spec.Entity).Records())
	if len(entities) == 0 {
		return nil, ErrNoEntities
	}

	tables := make(map[string]*Table, len(entities))
	for _, entity := range entities {
		table, err := buildEntity(df, spec, entity)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", entity, err)
		}
		if table != nil && len(table.Rows) > 0 {
			tables[entity] = table
		}
	}
	return tables, nil
}

func buildEntity(df dataframe.DataFrame, spec Spec, entity string) (*Table, error) {
	sub := df.Filter(dataframe.F{
		Colname:    spec.Entity,
		Comparator: series.Eq,
		Comparando: entity,
	})
	if sub.Err != nil {
		return nil, sub.Err
	}
	if sub.Nrow() == 0 {
		return nil, nil
	}

	var (
		types   []dataframe.AggregationType
		metrics []string
	)
	for _, c := range spec.Mean {
		types = append(types, dataframe.Aggregation_MEAN)
		metrics = append(metrics, c)
	}
	for _, c := range spec.Sum {
		types = append(types, dataframe.Aggregation_SUM)
		metrics = append(metrics, c)
	}

	agg := sub.GroupBy(spec.Period).Aggregation(types, metrics)
	if agg.Err != nil {
		return nil, agg.Err
	}
	agg = agg.Arrange(dataframe.Sort(spec.Period))
	if agg.Err != nil {
		return nil, agg.Err
	}

	periods := toInts(agg.Col(spec.Period).Float())

	values := make(map[string][]float64, len(metrics))
	for i, metric := range metrics {
		values[metric] = agg.Col(aggColumn(metric, types[i])).Float()
	}

	return assemble(entity, spec, periods, values), nil
}

// assemble adds lag columns, drops the first period and any row with a
// remaining NaN.
func assemble(entity string, spec Spec, periods []int, values map[string][]float64) *Table {
	columns := make([]string, 0, len(values)+len(spec.Lag))
	columns = append(columns, spec.Mean...)
	columns = append(columns, spec.Sum...)
	for _, metric := range spec.Lag {
		columns = append(columns, LagColumn(metric))
	}

	table := &Table{Entity: entity, Columns: columns}
	for i := 1; i < len(periods); i++ {
		row := make(map[string]float64, len(columns))
		complete := true
		for _, metric := range append(append([]string{}, spec.Mean...), spec.Sum...) {
			v := values[metric][i]
			if math.IsNaN(v) {
				complete = false
				break
			}
			row[metric] = v
		}
		for _, metric := range spec.Lag {
			if !complete {
				break
			}
			v := values[metric][i-1]
			if math.IsNaN(v) {
				complete = false
				break
			}
			row[LagColumn(metric)] = v
		}
		if !complete {
			continue
		}
		table.Periods = append(table.Periods, periods[i])
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Column extracts one feature column in row order.
func (t *Table) Column(name string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}

func checkColumns(df dataframe.DataFrame, spec Spec) error {
	present := make(map[string]struct{})
	for _, name := range df.Names() {
		present[name] = struct{}{}
	}
	required := []string{spec.Entity, spec.Period}
	required = append(required, spec.Mean...)
	required = append(required, spec.Sum...)
	required = append(required, spec.Lag...)
	for _, name := range required {
		if _, found := present[name]; !found {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	lagged := make(map[string]struct{})
	for _, c := range spec.Mean {
		lagged[c] = struct{}{}
	}
	for _, c := range spec.Sum {
		lagged[c] = struct{}{}
	}
	for _, c := range spec.Lag {
		if _, found := lagged[c]; !found {
			return fmt.Errorf("lag metric %q is not aggregated", c)
		}
	}
	return nil
}

func aggColumn(metric string, t dataframe.AggregationType) string {
	return metric + "_" + t.String()
}

func uniqueRecords(records []string) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, r := range records {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func toInts(values []float64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(math.Round(v))
	}
	return out
}
