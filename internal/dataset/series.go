package dataset

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mbenes/groupfit/pkg/timeseries"
)

// Categories returns the distinct surveillance categories, sorted.
func Categories(rows []SurveillanceRow) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.Category] = struct{}{}
	}
	categories := maps.Keys(seen)
	slices.Sort(categories)
	return categories
}

// YearlySeries builds the per-category yearly total series, ordered by
// year. Duplicate (category, year) rows are summed.
func YearlySeries(rows []SurveillanceRow, category string) *timeseries.Series {
	totals := make(map[int]float64)
	for _, r := range rows {
		if r.Category == category {
			totals[r.Year] += r.Total()
		}
	}
	years := maps.Keys(totals)
	slices.Sort(years)

	values := make([]float64, len(years))
	for i, y := range years {
		values[i] = totals[y]
	}
	s, _ := timeseries.NewWithPeriods(years, values)
	s.Name = category
	return s
}

// MonthlySeries flattens a category's rows into one monthly series in
// chronological order, for seasonal fitting. Period labels are
// year*100+month.
func MonthlySeries(rows []SurveillanceRow, category string) *timeseries.Series {
	var selected []SurveillanceRow
	for _, r := range rows {
		if r.Category == category {
			selected = append(selected, r)
		}
	}
	slices.SortFunc(selected, func(a, b SurveillanceRow) int {
		return a.Year - b.Year
	})

	var values []float64
	var periods []int
	for _, r := range selected {
		for m, v := range r.Months {
			values = append(values, v)
			periods = append(periods, r.Year*100+m+1)
		}
	}
	s, _ := timeseries.NewWithPeriods(periods, values)
	s.Name = category
	return s
}

// Carriers returns the distinct carrier codes, sorted.
func Carriers(observations []CarrierObservation) []string {
	seen := make(map[string]struct{})
	for _, o := range observations {
		seen[o.Carrier] = struct{}{}
	}
	carriers := maps.Keys(seen)
	slices.Sort(carriers)
	return carriers
}
