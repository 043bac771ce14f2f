// Package report renders the console summary tables both commands end
// with.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mbenes/groupfit/internal/fitter"
	"github.com/mbenes/groupfit/internal/forecast"
	"github.com/mbenes/groupfit/internal/pipeline"
	"github.com/mbenes/groupfit/internal/scenario"
	"github.com/mbenes/groupfit/pkg/utility/fixed"
)

type Writer struct {
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
}

// Fits prints one line per (entity, target) pair, failures included so
// skipped entities are visible in the output.
func (w *Writer) Fits(outcomes []pipeline.Outcome[fitter.Fit]) error {
	tw := w.table()
	fmt.Fprintln(tw, "ENTITY/TARGET\tROWS\tR2\tSTATUS")
	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(tw, "%s\t-\t-\tskipped: %v\n", o.Key, o.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\tok\n", o.Key, o.Value.NRows, o.Value.Model.RSquared)
	}
	return tw.Flush()
}

// Scenarios prints the optimized fare per (entity, scenario) with the
// searched bounds and bootstrap intervals. Fares and revenue are money,
// printed with fixed-point rounding.
func (w *Writer) Scenarios(outcomes []pipeline.Outcome[scenario.Result]) error {
	tw := w.table()
	fmt.Fprintln(tw, "ENTITY/SCENARIO\tFARE\tBOUNDS\tREVENUE\tREVENUE 95% CI\tEMISSIONS\tEMISSIONS 95% CI")
	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\tskipped: %v\n", o.Key, o.Err)
			continue
		}
		r := o.Value
		fmt.Fprintf(tw, "%s\t%s\t[%s, %s]\t%s\t[%s, %s]\t%.1f\t[%.1f, %.1f]\n",
			o.Key,
			money(r.Price),
			money(r.PriceMin), money(r.PriceMax),
			money(r.Revenue),
			money(r.RevenueInterval.Lower), money(r.RevenueInterval.Upper),
			r.Emissions,
			r.EmissionsInterval.Lower, r.EmissionsInterval.Upper)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w.out, "note: fares come from a bounded local search and may not be globally optimal")
	return nil
}

// Forecasts prints the one-step forecast with both interval levels per
// (category, engine).
func (w *Writer) Forecasts(outcomes []pipeline.Outcome[forecast.Result]) error {
	tw := w.table()
	fmt.Fprintln(tw, "CATEGORY/ENGINE\tPOINT\t80% INTERVAL\t95% INTERVAL\tSTATUS")
	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tskipped: %v\n", o.Key, o.Err)
			continue
		}
		next := o.Value.Next()
		fmt.Fprintf(tw, "%s\t%.1f\t[%.1f, %.1f]\t[%.1f, %.1f]\tok\n",
			o.Key,
			next.PointForecast,
			next.Lower80, next.Upper80,
			next.Lower95, next.Upper95)
	}
	return tw.Flush()
}

func money(v float64) string {
	return fixed.FromFloat64(v).Rescale(2).String()
}
