// Package dataset loads and types the merged tabular inputs of both
// analysis commands. Rows that fail validation are skipped and logged;
// a load that produces zero rows is terminal.
package dataset

import (
	"errors"
	"fmt"

	"github.com/mbenes/groupfit/pkg/utility/fixed"
)

var (
	ErrNoRows     = errors.New("no usable rows loaded")
	ErrBadHeader  = errors.New("unexpected header layout")
	ErrNotOpen    = errors.New("store is not connected")
	ErrBadQuarter = errors.New("quarter outside 1..4")
)

// CarrierObservation is one merged (carrier, year, quarter) row from the
// ticket, financial and sustainability tables. Monetary columns keep
// fixed-point precision until modeling converts them.
type CarrierObservation struct {
	Carrier    string
	Year       int
	Quarter    int
	Fare       fixed.Point
	Passengers float64
	FuelBurn   float64
	CO2Tonnes  float64
	Revenue    fixed.Point
}

func (o CarrierObservation) validate() error {
	if o.Carrier == "" {
		return errors.New("empty carrier code")
	}
	if o.Quarter < 1 || o.Quarter > 4 {
		return fmt.Errorf("%w: %d", ErrBadQuarter, o.Quarter)
	}
	if o.Fare.Lte(fixed.Zero) {
		return fmt.Errorf("non-positive fare %s", o.Fare.String())
	}
	if o.Passengers < 0 || o.FuelBurn < 0 || o.CO2Tonnes < 0 {
		return errors.New("negative metric value")
	}
	return nil
}

// monthColumns is the fixed order of the twelve month columns in the
// surveillance table.
var monthColumns = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// SurveillanceRow is one (category, year) row of monthly case counts.
type SurveillanceRow struct {
	Category string
	Year     int
	Months   [12]float64
}

// Total is the yearly case count for the row.
func (r SurveillanceRow) Total() float64 {
	var sum float64
	for _, v := range r.Months {
		sum += v
	}
	return sum
}

func (r SurveillanceRow) validate() error {
	if r.Category == "" {
		return errors.New("empty category")
	}
	if r.Year < 1900 || r.Year > 2200 {
		return fmt.Errorf("implausible year %d", r.Year)
	}
	for i, v := range r.Months {
		if v < 0 {
			return fmt.Errorf("negative count in %s", monthColumns[i])
		}
	}
	return nil
}
