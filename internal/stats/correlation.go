package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"bais/internal/errors"
)

// PearsonCorrelation returns the sample correlation of x and y in [-1, 1].
func PearsonCorrelation(x, y []float64) (float64, error) {
	const op = "PearsonCorrelation"
	if err := requirePaired(op, x, y); err != nil {
		return 0, err
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, errors.Precondition(op, "zero variance")
	}

	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r)), nil
}

// OLSRegression fits y = Intercept + Slope*x by ordinary least squares.
// R is the Pearson correlation of x and y, so a constant y is rejected too.
func OLSRegression(x, y []float64) (OLSRegressionResult, error) {
	const op = "OLSRegression"
	if err := requirePaired(op, x, y); err != nil {
		return OLSRegressionResult{}, err
	}
	if stat.Variance(x, nil) == 0 {
		return OLSRegressionResult{}, errors.Precondition(op, "zero variance in x")
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r, err := PearsonCorrelation(x, y)
	if err != nil {
		return OLSRegressionResult{}, errors.Wrap(err, op)
	}

	return OLSRegressionResult{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
	}, nil
}
