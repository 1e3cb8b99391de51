package stats

import (
	"math"
	"sort"

	"bais/internal/errors"
)

// Defaults shared by the resampling routines.
const (
	DefaultSeed                  uint32 = 123456789
	DefaultBootstrapIterations          = 2000
	DefaultPermutationIterations        = 10000
	MinResampleIterations               = 100
)

// BootstrapConfig controls BootstrapMeanDifferenceCI. Zero fields take the
// values of DefaultBootstrapConfig, so seed 0 selects DefaultSeed.
type BootstrapConfig struct {
	Alpha      float64
	Iterations int
	Seed       uint32
}

// DefaultBootstrapConfig returns alpha 0.05, 2000 iterations and the default seed.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Alpha:      0.05,
		Iterations: DefaultBootstrapIterations,
		Seed:       DefaultSeed,
	}
}

func (c BootstrapConfig) withDefaults() BootstrapConfig {
	d := DefaultBootstrapConfig()
	if c.Alpha == 0 {
		c.Alpha = d.Alpha
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// PermutationConfig controls PermutationMeanDifferenceTest. Zero fields take
// the values of DefaultPermutationConfig.
type PermutationConfig struct {
	Iterations int
	Seed       uint32
}

// DefaultPermutationConfig returns 10000 iterations and the default seed.
func DefaultPermutationConfig() PermutationConfig {
	return PermutationConfig{
		Iterations: DefaultPermutationIterations,
		Seed:       DefaultSeed,
	}
}

func (c PermutationConfig) withDefaults() PermutationConfig {
	if c.Iterations == 0 {
		c.Iterations = DefaultPermutationIterations
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	return c
}

// BootstrapMeanDifferenceCI returns a percentile bootstrap interval for
// mean(high) - mean(low). Each iteration resamples high then low with
// replacement; the alpha/2 and 1-alpha/2 quantiles of the sorted
// differences are the bounds. Identical inputs and config give
// bit-identical results.
func BootstrapMeanDifferenceCI(high, low []float64, cfg BootstrapConfig) (BootstrapCI, error) {
	const op = "BootstrapMeanDifferenceCI"
	cfg = cfg.withDefaults()
	if err := requireAlpha(op, cfg.Alpha); err != nil {
		return BootstrapCI{}, err
	}
	if cfg.Iterations < MinResampleIterations {
		return BootstrapCI{}, errors.Precondition(op, "iterations must be >= %d, got %d", MinResampleIterations, cfg.Iterations)
	}
	if len(high) == 0 || len(low) == 0 {
		return BootstrapCI{}, errors.Precondition(op, "need at least 1 sample per group")
	}
	if err := requireFinite(op, high); err != nil {
		return BootstrapCI{}, err
	}
	if err := requireFinite(op, low); err != nil {
		return BootstrapCI{}, err
	}

	rng := newMulberry32(cfg.Seed)
	resampleMean := func(values []float64) float64 {
		var sum float64
		for range values {
			sum += values[rng.Intn(len(values))]
		}
		return sum / float64(len(values))
	}

	diffs := make([]float64, cfg.Iterations)
	for i := range diffs {
		meanHigh := resampleMean(high)
		meanLow := resampleMean(low)
		diffs[i] = meanHigh - meanLow
	}
	sort.Float64s(diffs)

	lower, err := quantileSorted(op, diffs, cfg.Alpha/2)
	if err != nil {
		return BootstrapCI{}, err
	}
	upper, err := quantileSorted(op, diffs, 1-cfg.Alpha/2)
	if err != nil {
		return BootstrapCI{}, err
	}

	return BootstrapCI{
		Lower:      lower,
		Upper:      upper,
		Alpha:      cfg.Alpha,
		Method:     MethodBootstrapPercentile,
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
	}, nil
}

// PermutationMeanDifferenceTest estimates how often a random relabeling of
// the pooled values yields a mean difference at least as extreme as the
// observed mean(high) - mean(low).
func PermutationMeanDifferenceTest(high, low []float64, cfg PermutationConfig) (PermutationTestResult, error) {
	const op = "PermutationMeanDifferenceTest"
	cfg = cfg.withDefaults()
	if cfg.Iterations < MinResampleIterations {
		return PermutationTestResult{}, errors.Precondition(op, "iterations must be >= %d, got %d", MinResampleIterations, cfg.Iterations)
	}
	if len(high) == 0 || len(low) == 0 {
		return PermutationTestResult{}, errors.Precondition(op, "need at least 1 sample per group")
	}
	if err := requireFinite(op, high); err != nil {
		return PermutationTestResult{}, err
	}
	if err := requireFinite(op, low); err != nil {
		return PermutationTestResult{}, err
	}

	observed := mean(high) - mean(low)

	pooled := make([]float64, 0, len(low)+len(high))
	pooled = append(pooled, low...)
	pooled = append(pooled, high...)
	nLow := len(low)

	rng := newMulberry32(cfg.Seed)
	extreme := 0
	for i := 0; i < cfg.Iterations; i++ {
		for j := len(pooled) - 1; j > 0; j-- {
			k := rng.Intn(j + 1)
			pooled[j], pooled[k] = pooled[k], pooled[j]
		}
		diff := mean(pooled[nLow:]) - mean(pooled[:nLow])
		if math.Abs(diff) >= math.Abs(observed) {
			extreme++
		}
	}

	return PermutationTestResult{
		ObservedDifference: observed,
		PTwoSided:          float64(extreme) / float64(cfg.Iterations),
		Iterations:         cfg.Iterations,
		Seed:               cfg.Seed,
	}, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
