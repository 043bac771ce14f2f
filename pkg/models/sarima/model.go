// Package sarima implements seasonal ARIMA models, order
// (p,d,q)x(P,D,Q,m), estimated by conditional sum of squares with
// momentum gradient refinement.
package sarima

import (
	"errors"
	"math"

	"github.com/mbenes/groupfit/pkg/models/arima"
	"github.com/mbenes/groupfit/pkg/stats"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

var (
	ErrNotFitted        = errors.New("model must be fitted before prediction")
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	ErrEmptyDiff        = errors.New("differencing resulted in empty series")
)

// Order represents the SARIMA order (p,d,q)x(P,D,Q,m).
type Order struct {
	P, D, Q    int
	SP, SD, SQ int
	M          int
}

type Model struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	SARCoeffs []float64
	SMACoeffs []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64

	fitted     bool
	data       *timeseries.Series
	diffData   *timeseries.Series
	residuals  []float64
	fittedVals []float64
}

func New(p, d, q, sp, sd, sq, m int) *Model {
	return &Model{
		Order:     Order{P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, M: m},
		ARCoeffs:  make([]float64, p),
		MACoeffs:  make([]float64, q),
		SARCoeffs: make([]float64, sp),
		SMACoeffs: make([]float64, sq),
	}
}

// Fit estimates the model on the given series.
func (m *Model) Fit(series *timeseries.Series) error {
	o := m.Order
	minLen := o.P + o.Q + o.D + (o.SP+o.SD+o.SQ)*o.M + 8
	if series.Len() < minLen {
		return ErrInsufficientData
	}

	m.data = series

	diffSeries := series
	for i := 0; i < o.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return ErrEmptyDiff
		}
	}
	for i := 0; i < o.SD; i++ {
		diffSeries = diffSeries.SeasonalDiff(o.M)
		if diffSeries.Len() == 0 {
			return ErrEmptyDiff
		}
	}
	m.diffData = diffSeries

	if err := m.fitCSS(); err != nil {
		return err
	}
	m.calculateIC()

	m.fitted = true
	return nil
}

func (m *Model) fitCSS() error {
	y := m.diffData.Values
	n := len(y)
	o := m.Order

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	if o.P > 0 {
		if acf := stats.ACF(m.diffData, o.P); acf != nil {
			for i := 0; i < o.P && i+1 < len(acf); i++ {
				m.ARCoeffs[i] = acf[i+1] * 0.5
			}
		}
	}
	if o.SP > 0 {
		if acf := stats.ACF(m.diffData, o.SP*o.M); acf != nil {
			for i := 0; i < o.SP; i++ {
				idx := (i + 1) * o.M
				if idx < len(acf) {
					m.SARCoeffs[i] = acf[idx] * 0.5
				}
			}
		}
	}
	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}

	return m.optimizeCSS(y)
}

func (m *Model) optimizeCSS(y []float64) error {
	n := len(y)
	o := m.Order

	maxIter := 200
	tolerance := 1e-8
	learningRate := 0.005
	momentum := 0.9
	decay := 0.99

	arMomentum := make([]float64, o.P)
	maMomentum := make([]float64, o.Q)
	sarMomentum := make([]float64, o.SP)
	smaMomentum := make([]float64, o.SQ)

	startIdx := max(max(o.P, o.Q), max(o.SP*o.M, o.SQ*o.M))
	if startIdx >= n-10 {
		startIdx = 0
	}

	bestSSE := math.Inf(1)
	bestAR := make([]float64, o.P)
	bestMA := make([]float64, o.Q)
	bestSAR := make([]float64, o.SP)
	bestSMA := make([]float64, o.SQ)
	noImproveCount := 0

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		currentSSE := 0.0

		for t := startIdx; t < n; t++ {
			pred := m.predictOne(y, residuals, t, n+1)
			residuals[t] = y[t] - pred
			currentSSE += residuals[t] * residuals[t]
		}

		if currentSSE < bestSSE {
			bestSSE = currentSSE
			copy(bestAR, m.ARCoeffs)
			copy(bestMA, m.MACoeffs)
			copy(bestSAR, m.SARCoeffs)
			copy(bestSMA, m.SMACoeffs)
			noImproveCount = 0
		} else {
			noImproveCount++
		}
		if noImproveCount > 20 {
			break
		}

		arGrad := make([]float64, o.P)
		maGrad := make([]float64, o.Q)
		sarGrad := make([]float64, o.SP)
		smaGrad := make([]float64, o.SQ)

		for t := startIdx; t < n; t++ {
			for i := 0; i < o.P && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < o.SP; i++ {
				lag := (i + 1) * o.M
				if t-lag >= 0 {
					sarGrad[i] -= 2 * residuals[t] * (y[t-lag] - m.Intercept)
				}
			}
			for i := 0; i < o.Q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
			for i := 0; i < o.SQ; i++ {
				lag := (i + 1) * o.M
				if t-lag >= 0 {
					smaGrad[i] -= 2 * residuals[t] * residuals[t-lag]
				}
			}
		}

		for i := 0; i < o.P; i++ {
			arMomentum[i] = momentum*arMomentum[i] + learningRate*arGrad[i]/float64(n)
			m.ARCoeffs[i] = clamp(m.ARCoeffs[i]-arMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < o.SP; i++ {
			sarMomentum[i] = momentum*sarMomentum[i] + learningRate*sarGrad[i]/float64(n)
			m.SARCoeffs[i] = clamp(m.SARCoeffs[i]-sarMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < o.Q; i++ {
			maMomentum[i] = momentum*maMomentum[i] + learningRate*maGrad[i]/float64(n)
			m.MACoeffs[i] = clamp(m.MACoeffs[i]-maMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < o.SQ; i++ {
			smaMomentum[i] = momentum*smaMomentum[i] + learningRate*smaGrad[i]/float64(n)
			m.SMACoeffs[i] = clamp(m.SMACoeffs[i]-smaMomentum[i], -0.99, 0.99)
		}

		learningRate *= decay

		if iter > 0 && math.Abs(currentSSE-bestSSE) < tolerance {
			break
		}
	}

	copy(m.ARCoeffs, bestAR)
	copy(m.MACoeffs, bestMA)
	copy(m.SARCoeffs, bestSAR)
	copy(m.SMACoeffs, bestSMA)

	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		pred := m.predictOne(y, m.residuals, t, n+1)
		m.fittedVals[t] = pred
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	numParams := o.P + o.Q + o.SP + o.SQ + 1
	if count > numParams {
		m.Variance = sse / float64(count-numParams)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}

	return nil
}

// predictOne computes the one-step conditional expectation at index t.
// residualLimit bounds the residual indices considered as known (the
// in-sample length during forecasting).
func (m *Model) predictOne(y, residuals []float64, t, residualLimit int) float64 {
	o := m.Order
	pred := m.Intercept

	for i := 0; i < o.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < o.SP; i++ {
		lag := (i + 1) * o.M
		if t-lag >= 0 {
			pred += m.SARCoeffs[i] * (y[t-lag] - m.Intercept)
		}
	}
	for i := 0; i < o.Q && t-i-1 >= 0 && t-i-1 < residualLimit; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	for i := 0; i < o.SQ; i++ {
		lag := (i + 1) * o.M
		if t-lag >= 0 && t-lag < residualLimit {
			pred += m.SMACoeffs[i] * residuals[t-lag]
		}
	}

	return pred
}

func (m *Model) calculateIC() {
	n := len(m.residuals)
	o := m.Order
	k := o.P + o.Q + o.SP + o.SQ + 1

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	if m.Variance > 0 {
		m.LogLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	m.AIC = -2*m.LogLik + 2*float64(k)

	kf, nf := float64(k), float64(n)
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}

	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// Predict generates point forecasts on the original scale.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	y := m.diffData.Values
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)

	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.predictOne(extY, extResiduals, t, n)
		extY[t] = pred
		extResiduals[t] = 0
	}

	forecasts := make([]float64, steps)
	copy(forecasts, extY[n:])

	return m.integrate(forecasts), nil
}

// Forecast generates forecasts with 80% and 95% intervals. The standard
// error grows with the horizon for integrated and seasonally integrated
// series.
func (m *Model) Forecast(steps int) ([]arima.ForecastResult, error) {
	points, err := m.Predict(steps)
	if err != nil {
		return nil, err
	}

	o := m.Order
	z80 := stats.NormalQuantile(0.9)
	z95 := stats.NormalQuantile(0.975)

	results := make([]arima.ForecastResult, steps)
	for h := 0; h < steps; h++ {
		se := math.Sqrt(m.Variance)
		if o.D > 0 {
			se *= math.Sqrt(float64(h + 1))
		}
		if o.SD > 0 && o.M > 0 {
			se *= math.Sqrt(float64(h/o.M + 1))
		}

		results[h] = arima.ForecastResult{
			PointForecast: points[h],
			StandardError: se,
			Lower80:       points[h] - z80*se,
			Upper80:       points[h] + z80*se,
			Lower95:       points[h] - z95*se,
			Upper95:       points[h] + z95*se,
		}
	}

	return results, nil
}

// integrate undoes seasonal differencing first, then non-seasonal, to
// return forecasts on the original scale.
func (m *Model) integrate(forecasts []float64) []float64 {
	o := m.Order
	original := m.data.Values
	n := len(original)

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	// The seasonal integration anchors on the non-seasonally differenced
	// series, matching the differencing order applied in Fit.
	nonSeasonalDiff := original
	for i := 0; i < o.D; i++ {
		if len(nonSeasonalDiff) <= 1 {
			break
		}
		next := make([]float64, len(nonSeasonalDiff)-1)
		for j := 1; j < len(nonSeasonalDiff); j++ {
			next[j-1] = nonSeasonalDiff[j] - nonSeasonalDiff[j-1]
		}
		nonSeasonalDiff = next
	}

	if o.SD > 0 && o.M > 0 {
		nDiff := len(nonSeasonalDiff)
		for i := 0; i < o.SD; i++ {
			for j := 0; j < len(result); j++ {
				if j < o.M {
					idx := nDiff - o.M + j
					if idx >= 0 && idx < nDiff {
						result[j] += nonSeasonalDiff[idx]
					}
				} else {
					result[j] += result[j-o.M]
				}
			}
		}
	}

	for i := 0; i < o.D; i++ {
		lastVal := original[n-1]
		for j := 0; j < len(result); j++ {
			if j == 0 {
				result[j] += lastVal
			} else {
				result[j] += result[j-1]
			}
		}
	}

	return result
}

func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
