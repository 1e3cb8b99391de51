package stats

import (
	moremath "github.com/aclements/go-moremath/stats"

	"bais/internal/errors"
)

// MannWhitneyU runs a two-sided Mann–Whitney U test of a against b. It
// suits the small, discrete, skewed response distributions models produce,
// where the t-test's normality assumption is doubtful.
func MannWhitneyU(a, b []float64) (MannWhitneyResult, error) {
	const op = "MannWhitneyU"
	if len(a) == 0 || len(b) == 0 {
		return MannWhitneyResult{}, errors.Precondition(op, "need at least 1 sample per group")
	}
	if err := requireFinite(op, a); err != nil {
		return MannWhitneyResult{}, err
	}
	if err := requireFinite(op, b); err != nil {
		return MannWhitneyResult{}, err
	}

	res, err := moremath.MannWhitneyUTest(a, b, moremath.LocationDiffers)
	switch err {
	case nil:
	case moremath.ErrSamplesEqual:
		return MannWhitneyResult{}, errors.Precondition(op, "all samples are equal")
	case moremath.ErrSampleSize:
		return MannWhitneyResult{}, errors.Precondition(op, "sample too small")
	default:
		return MannWhitneyResult{}, errors.Wrap(err, op)
	}

	return MannWhitneyResult{
		U:         res.U,
		PTwoSided: clampProbability(res.P),
		N1:        res.N1,
		N2:        res.N2,
	}, nil
}
