// Package timeseries provides the ordered series type shared by the
// modeling packages. Observations are float64 values tagged with an
// integer period label (a year, or an encoded year-quarter).
package timeseries

import (
	"errors"
	"math"
)

var (
	ErrLengthMismatch = errors.New("periods and values must have the same length")
)

type Series struct {
	Periods []int
	Values  []float64
	Name    string
}

// New creates a series with synthetic consecutive period labels starting at 0.
func New(values []float64) *Series {
	periods := make([]int, len(values))
	for i := range periods {
		periods[i] = i
	}
	return &Series{Periods: periods, Values: values}
}

// NewWithPeriods creates a series with explicit period labels.
func NewWithPeriods(periods []int, values []float64) (*Series, error) {
	if len(periods) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Series{Periods: periods, Values: values}, nil
}

func (s *Series) Len() int {
	return len(s.Values)
}

func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	m := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	m := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Diff returns the first difference of the series.
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN returns the n-th order difference, shortening the series by n.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Name: s.Name + "_diff"}
	}

	values := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		values[i-n] = s.Values[i] - s.Values[i-n]
	}

	periods := make([]int, len(values))
	copy(periods, s.Periods[n:])

	return &Series{Periods: periods, Values: values, Name: s.Name + "_diff"}
}

// SeasonalDiff returns the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	if m <= 0 || len(s.Values) <= m {
		return &Series{Name: s.Name + "_sdiff"}
	}

	values := make([]float64, len(s.Values)-m)
	for i := m; i < len(s.Values); i++ {
		values[i-m] = s.Values[i] - s.Values[i-m]
	}

	periods := make([]int, len(values))
	copy(periods, s.Periods[m:])

	return &Series{Periods: periods, Values: values, Name: s.Name + "_sdiff"}
}

// Lag returns the series shifted by k periods so that the value at index i
// is the value k periods before the period at index i. The series shortens
// by k; the first k periods have no defined lag.
func (s *Series) Lag(k int) *Series {
	if k <= 0 || k >= len(s.Values) {
		return &Series{Name: s.Name + "_lag"}
	}

	values := make([]float64, len(s.Values)-k)
	copy(values, s.Values[:len(s.Values)-k])

	periods := make([]int, len(values))
	copy(periods, s.Periods[k:])

	return &Series{Periods: periods, Values: values, Name: s.Name + "_lag"}
}

// Slice returns the sub-series [start, end).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	periods := make([]int, len(values))
	copy(periods, s.Periods[start:end])

	return &Series{Periods: periods, Values: values, Name: s.Name}
}

func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	periods := make([]int, len(s.Periods))
	copy(periods, s.Periods)

	return &Series{Periods: periods, Values: values, Name: s.Name}
}

// Log applies the natural logarithm. Non-positive values map to NaN.
func (s *Series) Log() *Series {
	values := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if v > 0 {
			values[i] = math.Log(v)
		} else {
			values[i] = math.NaN()
		}
	}

	periods := make([]int, len(s.Periods))
	copy(periods, s.Periods)

	return &Series{Periods: periods, Values: values, Name: s.Name + "_log"}
}

// MovingAverage returns the simple moving average over the given window.
func (s *Series) MovingAverage(window int) *Series {
	if window <= 0 || window > len(s.Values) {
		return &Series{Name: s.Name + "_ma"}
	}

	values := make([]float64, len(s.Values)-window+1)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += s.Values[i]
	}
	values[0] = sum / float64(window)

	for i := window; i < len(s.Values); i++ {
		sum = sum - s.Values[i-window] + s.Values[i]
		values[i-window+1] = sum / float64(window)
	}

	periods := make([]int, len(values))
	copy(periods, s.Periods[window-1:])

	return &Series{Periods: periods, Values: values, Name: s.Name + "_ma"}
}
