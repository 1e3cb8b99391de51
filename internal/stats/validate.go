package stats

import (
	"math"

	"bais/internal/errors"
)

func requireNonEmpty(op string, values []float64) error {
	if len(values) == 0 {
		return errors.Precondition(op, "empty values")
	}
	return requireFinite(op, values)
}

func requireAtLeastTwoPerGroup(op string, a, b []float64) error {
	if len(a) < 2 || len(b) < 2 {
		return errors.Precondition(op, "need at least 2 samples per group")
	}
	if err := requireFinite(op, a); err != nil {
		return err
	}
	return requireFinite(op, b)
}

func requirePaired(op string, x, y []float64) error {
	if len(x) != len(y) {
		return errors.Precondition(op, "x and y must have same length (%d != %d)", len(x), len(y))
	}
	if len(x) < 2 {
		return errors.Precondition(op, "need at least 2 paired samples")
	}
	if err := requireFinite(op, x); err != nil {
		return err
	}
	return requireFinite(op, y)
}

func requireFinite(op string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Precondition(op, "non-finite value %v at index %d", v, i)
		}
	}
	return nil
}

func requireAlpha(op string, alpha float64) error {
	if !(alpha > 0 && alpha < 1) {
		return errors.Precondition(op, "alpha must be in (0, 1), got %v", alpha)
	}
	return nil
}

func requireCounts(op string, successes, n int) error {
	if n <= 0 {
		return errors.Precondition(op, "sample size must be positive, got %d", n)
	}
	if successes < 0 || successes > n {
		return errors.Precondition(op, "successes must be between 0 and %d, got %d", n, successes)
	}
	return nil
}

// clampProbability guards against rounding drift outside [0, 1].
func clampProbability(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}
