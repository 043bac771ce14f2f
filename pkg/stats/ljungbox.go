package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mbenes/groupfit/pkg/timeseries"
)

// LjungBoxResult holds the outcome of a Ljung-Box autocorrelation test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DoF       int
}

// LjungBox tests residuals for remaining autocorrelation up to the given
// number of lags. fitdf is the number of parameters estimated by the model
// whose residuals are tested, subtracted from the degrees of freedom.
// p > 0.05 suggests the residuals are white noise.
func LjungBox(series *timeseries.Series, lags, fitdf int) *LjungBoxResult {
	n := series.Len()
	if n < 3 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(series, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	chi := distuv.ChiSquared{K: float64(dof)}
	pValue := chi.Survival(q)

	return &LjungBoxResult{
		Statistic: q,
		PValue:    pValue,
		Lags:      lags,
		DoF:       dof,
	}
}

// NormalQuantile returns the standard normal quantile for probability p,
// e.g. 0.975 for the two-sided 95% bound.
func NormalQuantile(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return distuv.UnitNormal.Quantile(p)
}
