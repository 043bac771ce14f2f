// Package arima implements ARIMA(p,d,q) models estimated by conditional
// sum of squares.
package arima

import (
	"errors"
	"math"

	"github.com/mbenes/groupfit/pkg/stats"
	"github.com/mbenes/groupfit/pkg/timeseries"
)

var (
	ErrNotFitted        = errors.New("model must be fitted before prediction")
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	ErrEmptyDiff        = errors.New("differencing resulted in empty series")
)

// Order represents the model order (p, d, q).
type Order struct {
	P int
	D int
	Q int
}

type Model struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
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

func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// minFitObservations is the margin of observations required beyond the
// order itself. Small yearly panels are the common case here, so this is
// deliberately lower than the usual recommendation for ARMA estimation.
const minFitObservations = 3

// Fit estimates the model on the given series.
func (m *Model) Fit(series *timeseries.Series) error {
	if series.Len() < m.Order.P+m.Order.Q+m.Order.D+minFitObservations {
		return ErrInsufficientData
	}

	m.data = series

	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
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
	p := m.Order.P
	q := m.Order.Q

	if p == 0 && q == 0 {
		// White noise around the mean
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		m.Intercept = mean / float64(n)
		m.Variance = 0
		for _, v := range y {
			diff := v - m.Intercept
			m.Variance += diff * diff
		}
		if n > 1 {
			m.Variance /= float64(n - 1)
		}
		m.residuals = make([]float64, n)
		m.fittedVals = make([]float64, n)
		for i, v := range y {
			m.residuals[i] = v - m.Intercept
			m.fittedVals[i] = m.Intercept
		}
		return nil
	}

	// Yule-Walker initial AR estimates
	if p > 0 {
		acf := stats.ACF(m.diffData, p)
		if acf != nil {
			if phi := yuleWalker(acf, p); phi != nil {
				m.ARCoeffs = phi
			}
		}
	}

	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}

	return m.optimizeCSS(y)
}

func (m *Model) optimizeCSS(y []float64) error {
	n := len(y)
	p := m.Order.P
	q := m.Order.Q

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	maxIter := 100
	tolerance := 1e-6
	learningRate := 0.01

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		prevSSE := 0.0

		startIdx := max(p, q)
		for t := startIdx; t < n; t++ {
			pred := m.predictOne(y, residuals, t)
			residuals[t] = y[t] - pred
			prevSSE += residuals[t] * residuals[t]
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)

		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			m.ARCoeffs[i] -= learningRate * arGrad[i] / float64(n)
			m.ARCoeffs[i] = clamp(m.ARCoeffs[i], -0.99, 0.99)
		}
		for i := 0; i < q; i++ {
			m.MACoeffs[i] -= learningRate * maGrad[i] / float64(n)
			m.MACoeffs[i] = clamp(m.MACoeffs[i], -0.99, 0.99)
		}

		newSSE := 0.0
		for t := startIdx; t < n; t++ {
			pred := m.predictOne(y, residuals, t)
			residuals[t] = y[t] - pred
			newSSE += residuals[t] * residuals[t]
		}

		if math.Abs(prevSSE-newSSE) < tolerance {
			break
		}
	}

	// Final residuals, fitted values and variance
	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)

	startIdx := max(p, q)
	for t := 0; t < n; t++ {
		if t < startIdx {
			m.fittedVals[t] = m.Intercept
			m.residuals[t] = y[t] - m.fittedVals[t]
			continue
		}
		pred := m.predictOne(y, m.residuals, t)
		m.fittedVals[t] = pred
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}

	return nil
}

func (m *Model) predictOne(y, residuals []float64, t int) float64 {
	pred := m.Intercept
	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	return pred
}

func (m *Model) calculateIC() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + 1

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

// Predict generates point forecasts for the given number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	y := m.diffData.Values
	n := len(y)
	p := m.Order.P
	q := m.Order.Q

	extY := make([]float64, n+steps)
	copy(extY, y)

	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept

		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.ARCoeffs[i] * (extY[t-i-1] - m.Intercept)
		}
		// Future residuals are zero in expectation
		for i := 0; i < q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MACoeffs[i] * extResiduals[t-i-1]
		}

		extY[t] = pred
		extResiduals[t] = 0
	}

	forecasts := make([]float64, steps)
	copy(forecasts, extY[n:])

	if m.Order.D > 0 {
		forecasts = m.integrate(forecasts)
	}

	return forecasts, nil
}

// integrate undoes differencing to return forecasts on the original scale.
func (m *Model) integrate(forecasts []float64) []float64 {
	d := m.Order.D
	original := m.data.Values

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for i := 0; i < d; i++ {
		lastVal := original[len(original)-1-i]
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

func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.fittedVals))
	copy(out, m.fittedVals)
	return out
}

// yuleWalker estimates AR coefficients via the Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	if order == 1 {
		phi[0] = acf[1]
		return phi
	}

	phi[0] = acf[1]
	v := 1 - phi[0]*phi[0]

	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		if v == 0 {
			break
		}
		lambda /= v

		newPhi := make([]float64, i+1)
		for j := 0; j < i; j++ {
			newPhi[j] = phi[j] - lambda*phi[i-1-j]
		}
		newPhi[i] = lambda
		copy(phi, newPhi)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}

	return phi
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
