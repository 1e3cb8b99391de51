package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Reference distributions for every p-value and critical value in the
// package. Survival functions are used for upper tails so that very small
// p-values keep their precision instead of cancelling in 1 - CDF.

// studentTTwoSided returns 2 * (1 - CDF_t(|t|, df)).
func studentTTwoSided(t, df float64) float64 {
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clampProbability(2 * tDist.Survival(math.Abs(t)))
}

// studentTQuantile returns the p-quantile of Student's t with df degrees of freedom.
func studentTQuantile(p, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}

// normalTwoSided returns 2 * (1 - Phi(|z|)).
func normalTwoSided(z float64) float64 {
	return clampProbability(2 * distuv.UnitNormal.Survival(math.Abs(z)))
}

// normalQuantile is the inverse standard normal CDF.
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// chiSquareUpperTail returns P(X >= x) for X ~ chi-square(df).
func chiSquareUpperTail(x float64, df int) float64 {
	if x <= 0 {
		return 1
	}
	chiDist := distuv.ChiSquared{K: float64(df)}
	return clampProbability(chiDist.Survival(x))
}
