package stats

import (
	"math"
	"sort"

	"bais/internal/errors"
)

// Quantile returns the linearly interpolated p-quantile of values.
// The input is copied before sorting and is never modified.
func Quantile(values []float64, p float64) (float64, error) {
	const op = "Quantile"
	if err := requireNonEmpty(op, values); err != nil {
		return 0, err
	}
	return quantileSorted(op, sortedCopy(values), p)
}

// ComputeFiveNumberSummary returns min, quartiles, median and max of values.
func ComputeFiveNumberSummary(values []float64) (FiveNumberSummary, error) {
	const op = "ComputeFiveNumberSummary"
	if err := requireNonEmpty(op, values); err != nil {
		return FiveNumberSummary{}, err
	}

	sorted := sortedCopy(values)
	q1, _ := quantileSorted(op, sorted, 0.25)
	median, _ := quantileSorted(op, sorted, 0.5)
	q3, _ := quantileSorted(op, sorted, 0.75)

	return FiveNumberSummary{
		Min:    sorted[0],
		Q1:     q1,
		Median: median,
		Q3:     q3,
		Max:    sorted[len(sorted)-1],
	}, nil
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// quantileSorted expects sorted to be ascending and non-empty.
func quantileSorted(op string, sorted []float64, p float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, errors.Precondition(op, "empty values")
	}
	if !(p >= 0 && p <= 1) {
		return 0, errors.Precondition(op, "p must be in [0, 1], got %v", p)
	}
	if len(sorted) == 1 {
		return sorted[0], nil
	}

	index := float64(len(sorted)-1) * p
	lower := math.Floor(index)
	upper := math.Ceil(index)
	if lower == upper {
		return sorted[int(lower)], nil
	}

	weight := index - lower
	return sorted[int(lower)]*(1-weight) + sorted[int(upper)]*weight, nil
}
