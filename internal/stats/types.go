package stats

// Method names carried on interval results.
const (
	MethodBootstrapPercentile = "bootstrap-percentile"
	MethodWilsonScore         = "wilson-score"
	MethodStudentT            = "student-t"
)

// DescriptiveStats summarizes one sample.
// SampleStdDev and StandardError are 0 when N < 2.
type DescriptiveStats struct {
	N             int     `json:"n"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	SampleStdDev  float64 `json:"sampleStdDev"`
	StandardError float64 `json:"standardError"`
}

// FiveNumberSummary holds linear-interpolation order statistics.
type FiveNumberSummary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// MeanCI is a Student-t confidence interval for a population mean.
type MeanCI struct {
	Mean   float64 `json:"mean"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Alpha  float64 `json:"alpha"`
	Method string  `json:"method"`
}

// WelchTTestResult is the outcome of an unequal-variance two-sample t-test.
// DF is the Welch–Satterthwaite approximation and need not be integral.
type WelchTTestResult struct {
	T         float64 `json:"t"`
	DF        float64 `json:"df"`
	PTwoSided float64 `json:"pTwoSided"`
}

// EffectSizeResult holds standardized mean differences.
type EffectSizeResult struct {
	CohensD float64 `json:"cohensD"`
	HedgesG float64 `json:"hedgesG"`
}

// OLSRegressionResult is a simple least-squares fit y = Intercept + Slope*x.
type OLSRegressionResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
}

// ProportionZTestResult is the outcome of a pooled two-proportion z-test.
// Z is positive when the first group's proportion is larger.
type ProportionZTestResult struct {
	Z         float64 `json:"z"`
	PTwoSided float64 `json:"pTwoSided"`
}

// ChiSquareResult is the outcome of a test of independence.
type ChiSquareResult struct {
	ChiSquare float64 `json:"chiSquare"`
	DF        int     `json:"df"`
	PValue    float64 `json:"pValue"`
}

// GoodnessOfFitResult is the outcome of a chi-square goodness-of-fit test.
type GoodnessOfFitResult struct {
	ChiSquare float64   `json:"chiSquare"`
	DF        int       `json:"df"`
	PValue    float64   `json:"pValue"`
	Expected  []float64 `json:"expected"`
}

// ProportionCIResult is a confidence interval for a binomial proportion.
type ProportionCIResult struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Alpha  float64 `json:"alpha"`
	Method string  `json:"method"`
}

// ProportionTestResult is a single-sample proportion estimate with a Wald
// interval clamped to [0, 1].
type ProportionTestResult struct {
	Proportion    float64 `json:"proportion"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Level         float64 `json:"level"`
	StandardError float64 `json:"standardError"`
}

// BootstrapCI is a percentile bootstrap interval for mean(high) - mean(low).
type BootstrapCI struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Alpha      float64 `json:"alpha"`
	Method     string  `json:"method"`
	Iterations int     `json:"iterations"`
	Seed       uint32  `json:"seed"`
}

// PermutationTestResult is a two-sided permutation test of a mean difference.
type PermutationTestResult struct {
	ObservedDifference float64 `json:"observedDifference"`
	PTwoSided          float64 `json:"pTwoSided"`
	Iterations         int     `json:"iterations"`
	Seed               uint32  `json:"seed"`
}

// MannWhitneyResult is a two-sided Mann–Whitney U test.
type MannWhitneyResult struct {
	U         float64 `json:"u"`
	PTwoSided float64 `json:"pTwoSided"`
	N1        int     `json:"n1"`
	N2        int     `json:"n2"`
}
