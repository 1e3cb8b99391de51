package stats

import (
	"math"

	"bais/internal/errors"
)

// DefaultProportionAlpha is the significance level used by ProportionCI.
const DefaultProportionAlpha = 0.05

// ProportionZTest compares successesA/nA against successesB/nB using the
// pooled-proportion standard error. Z > 0 means group A has the larger
// proportion.
func ProportionZTest(successesA, nA, successesB, nB int) (ProportionZTestResult, error) {
	const op = "ProportionZTest"
	if err := requireCounts(op, successesA, nA); err != nil {
		return ProportionZTestResult{}, err
	}
	if err := requireCounts(op, successesB, nB); err != nil {
		return ProportionZTestResult{}, err
	}

	pA := float64(successesA) / float64(nA)
	pB := float64(successesB) / float64(nB)
	pooled := float64(successesA+successesB) / float64(nA+nB)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(nA) + 1/float64(nB)))
	if se == 0 {
		return ProportionZTestResult{}, errors.Precondition(op, "zero standard error")
	}

	z := (pA - pB) / se
	return ProportionZTestResult{
		Z:         z,
		PTwoSided: normalTwoSided(z),
	}, nil
}

// ChiSquareTest runs a chi-square test of independence on an r×c contingency
// table of non-negative counts. Expected counts come from the row and column
// marginals; a row or column that sums to zero makes the table degenerate.
func ChiSquareTest(observed [][]int) (ChiSquareResult, error) {
	const op = "ChiSquareTest"
	rows := len(observed)
	if rows < 2 {
		return ChiSquareResult{}, errors.Precondition(op, "need at least 2 rows, got %d", rows)
	}
	cols := len(observed[0])
	if cols < 2 {
		return ChiSquareResult{}, errors.Precondition(op, "need at least 2 columns, got %d", cols)
	}

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	var total float64
	for i, row := range observed {
		if len(row) != cols {
			return ChiSquareResult{}, errors.Precondition(op, "row %d has %d columns, want %d", i, len(row), cols)
		}
		for j, count := range row {
			if count < 0 {
				return ChiSquareResult{}, errors.Precondition(op, "negative count %d at [%d][%d]", count, i, j)
			}
			rowTotals[i] += float64(count)
			colTotals[j] += float64(count)
			total += float64(count)
		}
	}
	for i, sum := range rowTotals {
		if sum == 0 {
			return ChiSquareResult{}, errors.Precondition(op, "row %d sums to zero", i)
		}
	}
	for j, sum := range colTotals {
		if sum == 0 {
			return ChiSquareResult{}, errors.Precondition(op, "column %d sums to zero", j)
		}
	}

	var chiSquare float64
	for i, row := range observed {
		for j, count := range row {
			expected := rowTotals[i] * colTotals[j] / total
			diff := float64(count) - expected
			chiSquare += diff * diff / expected
		}
	}

	df := (rows - 1) * (cols - 1)
	return ChiSquareResult{
		ChiSquare: chiSquare,
		DF:        df,
		PValue:    chiSquareUpperTail(chiSquare, df),
	}, nil
}

// ChiSquareGoodnessOfFit tests observed category frequencies against
// expected frequencies.
func ChiSquareGoodnessOfFit(observed, expected []float64) (GoodnessOfFitResult, error) {
	const op = "ChiSquareGoodnessOfFit"
	if len(observed) != len(expected) {
		return GoodnessOfFitResult{}, errors.Precondition(op, "observed and expected must have same length (%d != %d)", len(observed), len(expected))
	}
	if len(observed) < 2 {
		return GoodnessOfFitResult{}, errors.Precondition(op, "need at least 2 categories")
	}
	if err := requireFinite(op, observed); err != nil {
		return GoodnessOfFitResult{}, err
	}
	if err := requireFinite(op, expected); err != nil {
		return GoodnessOfFitResult{}, err
	}

	var chiSquare float64
	for i := range observed {
		if observed[i] < 0 {
			return GoodnessOfFitResult{}, errors.Precondition(op, "observed values must be non-negative")
		}
		if expected[i] <= 0 {
			return GoodnessOfFitResult{}, errors.Precondition(op, "expected values must be positive")
		}
		diff := observed[i] - expected[i]
		chiSquare += diff * diff / expected[i]
	}

	df := len(observed) - 1
	return GoodnessOfFitResult{
		ChiSquare: chiSquare,
		DF:        df,
		PValue:    chiSquareUpperTail(chiSquare, df),
		Expected:  append([]float64(nil), expected...),
	}, nil
}

// ProportionCI returns the 95% Wilson score interval for successes/n.
func ProportionCI(successes, n int) (ProportionCIResult, error) {
	return ProportionCIWithAlpha(successes, n, DefaultProportionAlpha)
}

// ProportionCIWithAlpha returns the Wilson score interval at level 1-alpha.
// Unlike the Wald interval it stays inside [0, 1] and is non-degenerate at
// 0 and n successes: the bounds there are exactly 0 and 1.
func ProportionCIWithAlpha(successes, n int, alpha float64) (ProportionCIResult, error) {
	const op = "ProportionCI"
	if err := requireCounts(op, successes, n); err != nil {
		return ProportionCIResult{}, err
	}
	if err := requireAlpha(op, alpha); err != nil {
		return ProportionCIResult{}, err
	}

	nf := float64(n)
	p := float64(successes) / nf
	z := normalQuantile(1 - alpha/2)
	z2 := z * z

	denominator := 1 + z2/nf
	center := p + z2/(2*nf)
	margin := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))

	lower := math.Max(0, (center-margin)/denominator)
	upper := math.Min(1, (center+margin)/denominator)
	if successes == 0 {
		lower = 0
	}
	if successes == n {
		upper = 1
	}

	return ProportionCIResult{
		Lower:  lower,
		Upper:  upper,
		Alpha:  alpha,
		Method: MethodWilsonScore,
	}, nil
}

// ProportionTest estimates successes/trials with a normal-approximation
// (Wald) interval at the given confidence level, clamped to [0, 1].
func ProportionTest(successes, trials int, confidenceLevel float64) (ProportionTestResult, error) {
	const op = "ProportionTest"
	if err := requireCounts(op, successes, trials); err != nil {
		return ProportionTestResult{}, err
	}
	if !(confidenceLevel > 0 && confidenceLevel < 1) {
		return ProportionTestResult{}, errors.Precondition(op, "confidence level must be in (0, 1), got %v", confidenceLevel)
	}

	proportion := float64(successes) / float64(trials)
	se := math.Sqrt(proportion * (1 - proportion) / float64(trials))
	margin := normalQuantile(1-(1-confidenceLevel)/2) * se

	return ProportionTestResult{
		Proportion:    proportion,
		Lower:         math.Max(0, proportion-margin),
		Upper:         math.Min(1, proportion+margin),
		Level:         confidenceLevel,
		StandardError: se,
	}, nil
}
