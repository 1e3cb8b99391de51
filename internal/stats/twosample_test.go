package stats

import (
	"math"
	"math/rand"
	"testing"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bais/internal/errors"
)

var (
	highAnchor = []float64{10, 11, 9, 12, 10}
	lowAnchor  = []float64{1, 2, 0, 3, 1}
)

func TestWelchTTestTwoSided_SeparatedGroups(t *testing.T) {
	res, err := WelchTTestTwoSided(highAnchor, lowAnchor)
	require.NoError(t, err)

	assert.False(t, math.IsInf(res.T, 0) || math.IsNaN(res.T))
	assert.InDelta(t, 9/math.Sqrt(0.52), res.T, 1e-9)
	assert.InDelta(t, 8, res.DF, 1e-9)
	assert.Greater(t, res.DF, 1.0)
	assert.Less(t, res.PTwoSided, 0.001)
	assert.GreaterOrEqual(t, res.PTwoSided, 0.0)
}

func TestWelchTTestTwoSided_ReferenceVector(t *testing.T) {
	a := []float64{2, 1, 3, 4}
	b := []float64{6, 5, 7, 9}

	res, err := WelchTTestTwoSided(a, b)
	require.NoError(t, err)

	assert.InDelta(t, -3.9703446152237674, res.T, 1e-12)
	assert.InDelta(t, 5.584615384615385, res.DF, 1e-12)
	assert.InDelta(t, 0.0085128631313781695, res.PTwoSided, 1e-8)

	ref, err := moremath.TwoSampleWelchTTest(&moremath.Sample{Xs: a}, &moremath.Sample{Xs: b}, moremath.LocationDiffers)
	require.NoError(t, err)
	assert.InDelta(t, ref.T, res.T, 1e-12)
	assert.InDelta(t, ref.DoF, res.DF, 1e-12)
	assert.InDelta(t, ref.P, res.PTwoSided, 1e-8)
}

func TestWelchTTestTwoSided_Symmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		a := randomSample(rng, 2+rng.Intn(20), 12, 4)
		b := randomSample(rng, 2+rng.Intn(20), 9, 6)

		ab, err := WelchTTestTwoSided(a, b)
		require.NoError(t, err)
		ba, err := WelchTTestTwoSided(b, a)
		require.NoError(t, err)

		assert.Equal(t, ab.T, -ba.T)
		assert.Equal(t, ab.DF, ba.DF)
		assert.Equal(t, ab.PTwoSided, ba.PTwoSided)
		assert.True(t, ab.PTwoSided >= 0 && ab.PTwoSided <= 1)
	}
}

func TestWelchTTestTwoSided_Preconditions(t *testing.T) {
	_, err := WelchTTestTwoSided([]float64{1}, []float64{1, 2})
	assert.True(t, errors.IsPrecondition(err))

	_, err = WelchTTestTwoSided([]float64{5, 5, 5}, []float64{2, 2})
	require.Error(t, err)
	assert.Equal(t, "WelchTTestTwoSided: zero standard error", err.Error())

	_, err = WelchTTestTwoSided([]float64{1, math.NaN()}, []float64{1, 2})
	assert.True(t, errors.IsPrecondition(err))
}

func TestEffectSizeTwoSample(t *testing.T) {
	res, err := EffectSizeTwoSample(highAnchor, lowAnchor)
	require.NoError(t, err)

	d := 9 / math.Sqrt(1.3)
	assert.InDelta(t, d, res.CohensD, 1e-12)
	assert.InDelta(t, d*(1-3.0/31.0), res.HedgesG, 1e-12)
	assert.Less(t, math.Abs(res.HedgesG), math.Abs(res.CohensD))
}

func TestEffectSizeTwoSample_SignSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for trial := 0; trial < 50; trial++ {
		a := randomSample(rng, 2+rng.Intn(15), 18, 5)
		b := randomSample(rng, 2+rng.Intn(15), 24, 5)

		ab, err := EffectSizeTwoSample(a, b)
		require.NoError(t, err)
		ba, err := EffectSizeTwoSample(b, a)
		require.NoError(t, err)

		assert.Equal(t, ab.CohensD, -ba.CohensD)
		assert.Equal(t, ab.HedgesG, -ba.HedgesG)
	}
}

func TestEffectSizeTwoSample_ZeroPooledVariance(t *testing.T) {
	_, err := EffectSizeTwoSample([]float64{7, 7, 7}, []float64{3, 3})
	require.Error(t, err)
	assert.True(t, errors.IsPrecondition(err))
	assert.Contains(t, err.Error(), "zero pooled variance")

	_, err = EffectSizeTwoSample([]float64{1, 2}, []float64{3})
	assert.True(t, errors.IsPrecondition(err))
}

func TestMannWhitneyU(t *testing.T) {
	res, err := MannWhitneyU(highAnchor, lowAnchor)
	require.NoError(t, err)

	assert.Equal(t, 5, res.N1)
	assert.Equal(t, 5, res.N2)
	assert.Less(t, res.PTwoSided, 0.05)

	same, err := MannWhitneyU([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Greater(t, same.PTwoSided, 0.5)
}

func TestMannWhitneyU_Preconditions(t *testing.T) {
	_, err := MannWhitneyU([]float64{3, 3}, []float64{3, 3, 3})
	assert.True(t, errors.IsPrecondition(err))

	_, err = MannWhitneyU(nil, []float64{1})
	assert.True(t, errors.IsPrecondition(err))
}

func randomSample(rng *rand.Rand, n int, mu, sigma float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Round(rng.NormFloat64()*sigma + mu)
	}
	// Rounded draws can collapse to a constant; keep some spread.
	values[0] += 0.5
	return values
}
