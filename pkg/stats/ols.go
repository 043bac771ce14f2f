package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// OLS performs ordinary least squares regression of y on the design matrix x
// (one row per observation, regressors as columns, caller adds the constant
// column if wanted). Returns coefficients and their standard errors, or nils
// when the system is singular or underdetermined.
func OLS(x [][]float64, y []float64) (coeffs, stdErrors []float64) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, nil
	}
	k := len(x[0])
	if k == 0 || n < k {
		return nil, nil
	}

	flat := make([]float64, 0, n*k)
	for _, row := range x {
		if len(row) != k {
			return nil, nil
		}
		flat = append(flat, row...)
	}

	X := mat.NewDense(n, k, flat)
	Y := mat.NewVecDense(n, y)

	var qr mat.QR
	qr.Factorize(X)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, Y); err != nil {
		return nil, nil
	}

	coeffs = make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
	}

	// Residual variance
	sse := 0.0
	for i := 0; i < n; i++ {
		pred := 0.0
		for j := 0; j < k; j++ {
			pred += coeffs[j] * x[i][j]
		}
		r := y[i] - pred
		sse += r * r
	}
	if n <= k {
		return coeffs, nil
	}
	s2 := sse / float64(n-k)

	// Standard errors from the diagonal of s2 * (X'X)^-1
	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return coeffs, nil
	}

	stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		stdErrors[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}

	return coeffs, stdErrors
}
