package features

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/mbenes/groupfit/internal/dataset"
)

// Carrier frame column names.
const (
	ColCarrier    = "Carrier"
	ColPeriod     = "Period"
	ColFare       = "Fare"
	ColPassengers = "Passengers"
	ColFuelBurn   = "FuelBurn"
	ColEmissions  = "Emissions"
	ColRevenue    = "Revenue"
)

// CarrierFrame lifts merged carrier observations into a dataframe for
// grouping. The period label encodes year and quarter as year*10+quarter
// so plain integer ordering is chronological.
func CarrierFrame(observations []dataset.CarrierObservation) dataframe.DataFrame {
	n := len(observations)
	carriers := make([]string, n)
	periods := make([]int, n)
	fares := make([]float64, n)
	passengers := make([]float64, n)
	fuel := make([]float64, n)
	emissions := make([]float64, n)
	revenue := make([]float64, n)

	for i, o := range observations {
		carriers[i] = o.Carrier
		periods[i] = o.Year*10 + o.Quarter
		fares[i] = o.Fare.Float64Unsafe()
		passengers[i] = o.Passengers
		fuel[i] = o.FuelBurn
		emissions[i] = o.CO2Tonnes
		revenue[i] = o.Revenue.Float64Unsafe()
	}

	return dataframe.New(
		series.New(carriers, series.String, ColCarrier),
		series.New(periods, series.Int, ColPeriod),
		series.New(fares, series.Float, ColFare),
		series.New(passengers, series.Float, ColPassengers),
		series.New(fuel, series.Float, ColFuelBurn),
		series.New(emissions, series.Float, ColEmissions),
		series.New(revenue, series.Float, ColRevenue),
	)
}

// CarrierSpec is the feature build used by the airfare pipeline: fares
// average per quarter, volumes and emissions sum, and fare carries a
// one-quarter lag.
func CarrierSpec() Spec {
	return Spec{
		Entity: ColCarrier,
		Period: ColPeriod,
		Mean:   []string{ColFare},
		Sum:    []string{ColPassengers, ColFuelBurn, ColEmissions, ColRevenue},
		Lag:    []string{ColFare},
	}
}
