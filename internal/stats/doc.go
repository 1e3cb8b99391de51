// Package stats is the statistics core used by every bias analysis.
//
// All functions are pure: they read their arguments, never mutate them, and
// return an immutable result record or an error. Nothing is shared between
// calls, so any function may be called from any number of goroutines.
//
// # Error policy
//
// A function either returns a well-defined numeric record or a precondition
// error (see errors.IsPrecondition) naming the operation and the violated
// requirement. Results never contain NaN or Inf. Empty samples, mismatched
// pairs, zero variance, degenerate tables, and out-of-range parameters are
// all precondition failures; callers decide whether to skip, substitute a
// sentinel, or propagate.
//
// # Descriptive statistics
//
//	ds, _ := stats.ComputeDescriptiveStats(months)
//	fmt.Printf("n=%d mean=%.2f sd=%.2f se=%.2f\n", ds.N, ds.Mean, ds.SampleStdDev, ds.StandardError)
//
//	summary, _ := stats.ComputeFiveNumberSummary(months)
//
// # Two-sample inference
//
//	tt, _ := stats.WelchTTestTwoSided(high, low)
//	es, _ := stats.EffectSizeTwoSample(high, low)
//	fmt.Printf("t(%.1f)=%.2f, p=%.4f, d=%.2f\n", tt.DF, tt.T, tt.PTwoSided, es.CohensD)
//
// # Resampling
//
// The bootstrap and permutation routines draw from a mulberry32 generator
// created per call from the configured seed. Identical inputs and seed give
// bit-identical intervals, so published numbers can be re-derived from raw
// data.
//
//	ci, _ := stats.BootstrapMeanDifferenceCI(high, low, stats.DefaultBootstrapConfig())
//
// # Categorical inference
//
//	z, _ := stats.ProportionZTest(18, 30, 9, 30)
//	chi, _ := stats.ChiSquareTest([][]int{{20, 5}, {5, 20}})
//	wilson, _ := stats.ProportionCI(0, 30) // wilson.Lower == 0
package stats
