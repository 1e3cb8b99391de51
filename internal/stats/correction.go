package stats

import (
	"math"
	"sort"

	"bais/internal/errors"
)

// BonferroniAdjust multiplies each p-value by the number of tests, capped at 1.
func BonferroniAdjust(pValues []float64) ([]float64, error) {
	const op = "BonferroniAdjust"
	if err := requirePValues(op, pValues); err != nil {
		return nil, err
	}

	m := float64(len(pValues))
	adjusted := make([]float64, len(pValues))
	for i, p := range pValues {
		adjusted[i] = math.Min(p*m, 1)
	}
	return adjusted, nil
}

// HolmAdjust applies the Holm–Bonferroni step-down correction. Adjusted
// values are returned in input order and never decrease with the raw rank.
func HolmAdjust(pValues []float64) ([]float64, error) {
	const op = "HolmAdjust"
	if err := requirePValues(op, pValues); err != nil {
		return nil, err
	}

	order := make([]int, len(pValues))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return pValues[order[i]] < pValues[order[j]]
	})

	m := len(pValues)
	adjusted := make([]float64, m)
	running := 0.0
	for rank, idx := range order {
		p := math.Min(pValues[idx]*float64(m-rank), 1)
		running = math.Max(running, p)
		adjusted[idx] = running
	}
	return adjusted, nil
}

func requirePValues(op string, pValues []float64) error {
	if len(pValues) == 0 {
		return errors.Precondition(op, "empty p-values")
	}
	for i, p := range pValues {
		if !(p >= 0 && p <= 1) {
			return errors.Precondition(op, "p-value %v at index %d outside [0, 1]", p, i)
		}
	}
	return nil
}
