package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"bais/internal/errors"
)

// WelchTTestTwoSided performs an unequal-variance two-sample t-test of
// mean(a) = mean(b). Degrees of freedom follow Welch–Satterthwaite.
//
// Two perfectly constant groups have zero standard error; that is a
// precondition failure rather than an infinite t. Callers that expect
// deterministic samples should check for them first.
func WelchTTestTwoSided(a, b []float64) (WelchTTestResult, error) {
	const op = "WelchTTestTwoSided"
	if err := requireAtLeastTwoPerGroup(op, a, b); err != nil {
		return WelchTTestResult{}, err
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	nA := float64(len(a))
	nB := float64(len(b))

	se2 := varA/nA + varB/nB
	if se2 == 0 {
		return WelchTTestResult{}, errors.Precondition(op, "zero standard error")
	}

	t := (meanA - meanB) / math.Sqrt(se2)

	denom := (varA*varA)/(nA*nA*(nA-1)) + (varB*varB)/(nB*nB*(nB-1))
	df := se2 * se2 / denom

	return WelchTTestResult{
		T:         t,
		DF:        df,
		PTwoSided: studentTTwoSided(t, df),
	}, nil
}

// EffectSizeTwoSample returns Cohen's d with a pooled standard deviation
// and Hedges' g, its small-sample bias-corrected form. Identical constant
// samples have an undefined effect size and fail.
func EffectSizeTwoSample(a, b []float64) (EffectSizeResult, error) {
	const op = "EffectSizeTwoSample"
	if err := requireAtLeastTwoPerGroup(op, a, b); err != nil {
		return EffectSizeResult{}, err
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	nA := float64(len(a))
	nB := float64(len(b))

	pooledVar := ((nA-1)*varA + (nB-1)*varB) / (nA + nB - 2)
	if pooledVar == 0 {
		return EffectSizeResult{}, errors.Precondition(op, "zero pooled variance")
	}

	cohensD := (meanA - meanB) / math.Sqrt(pooledVar)
	correction := 1 - 3/(4*(nA+nB)-9)

	return EffectSizeResult{
		CohensD: cohensD,
		HedgesG: cohensD * correction,
	}, nil
}
