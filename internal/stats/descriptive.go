package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"bais/internal/errors"
)

// ComputeDescriptiveStats returns n, mean, median, sample standard deviation
// (n-1 denominator) and standard error of values. With a single value there
// is no estimable dispersion and both SampleStdDev and StandardError are 0.
func ComputeDescriptiveStats(values []float64) (DescriptiveStats, error) {
	const op = "ComputeDescriptiveStats"
	if err := requireNonEmpty(op, values); err != nil {
		return DescriptiveStats{}, err
	}

	mean, err := mstats.Mean(values)
	if err != nil {
		return DescriptiveStats{}, errors.Wrap(err, op+": mean")
	}
	median, err := mstats.Median(values)
	if err != nil {
		return DescriptiveStats{}, errors.Wrap(err, op+": median")
	}

	n := len(values)
	result := DescriptiveStats{N: n, Mean: mean, Median: median}
	if n < 2 {
		return result, nil
	}

	sd, err := mstats.StandardDeviationSample(values)
	if err != nil {
		return DescriptiveStats{}, errors.Wrap(err, op+": standard deviation")
	}
	result.SampleStdDev = sd
	result.StandardError = sd / math.Sqrt(float64(n))
	return result, nil
}

// MeanConfidenceInterval returns mean ± t(1-alpha/2, n-1) * SE.
func MeanConfidenceInterval(values []float64, alpha float64) (MeanCI, error) {
	const op = "MeanConfidenceInterval"
	if len(values) < 2 {
		return MeanCI{}, errors.Precondition(op, "need at least 2 samples")
	}
	if err := requireAlpha(op, alpha); err != nil {
		return MeanCI{}, err
	}
	ds, err := ComputeDescriptiveStats(values)
	if err != nil {
		return MeanCI{}, err
	}

	tCritical := studentTQuantile(1-alpha/2, float64(ds.N-1))
	margin := tCritical * ds.StandardError

	return MeanCI{
		Mean:   ds.Mean,
		Lower:  ds.Mean - margin,
		Upper:  ds.Mean + margin,
		Alpha:  alpha,
		Method: MethodStudentT,
	}, nil
}
