package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"bais/domain/core"
	"bais/domain/trial"
	"bais/internal"
	"bais/internal/config"
	"bais/internal/errors"
	"bais/internal/stats"
	"bais/ports"
)

// Correction selects the multiple-comparison adjustment applied across deployments
type Correction string

const (
	CorrectionBonferroni Correction = "bonferroni"
	CorrectionHolm       Correction = "holm"
	CorrectionNone       Correction = "none"
)

// ParseCorrection accepts the names used on the command line and in the API
func ParseCorrection(s string) (Correction, error) {
	switch c := Correction(s); c {
	case CorrectionBonferroni, CorrectionHolm, CorrectionNone:
		return c, nil
	case "":
		return CorrectionBonferroni, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown correction %q (want bonferroni, holm or none)", s))
}

// ComparisonConfig controls one comparison run
type ComparisonConfig struct {
	Alpha                 float64    `json:"alpha"`
	BootstrapIterations   int        `json:"bootstrapIterations"`
	PermutationIterations int        `json:"permutationIterations"`
	Seed                  uint32     `json:"seed"`
	Workers               int        `json:"workers"`
	MinGroupSize          int        `json:"minGroupSize"`
	Correction            Correction `json:"correction"`
	Permutation           bool       `json:"permutation"`
	RankTest              bool       `json:"rankTest"`
}

// NewComparisonConfig derives run settings from the loaded configuration
func NewComparisonConfig(cfg config.AnalysisConfig) ComparisonConfig {
	return ComparisonConfig{
		Alpha:                 cfg.Alpha,
		BootstrapIterations:   cfg.BootstrapIterations,
		PermutationIterations: cfg.PermutationIterations,
		Seed:                  cfg.Seed,
		Workers:               cfg.Workers,
		MinGroupSize:          cfg.MinGroupSize,
		Correction:            CorrectionBonferroni,
	}
}

// GroupSummary describes one condition arm of one deployment
type GroupSummary struct {
	Descriptive   stats.DescriptiveStats `json:"descriptive"`
	MeanCI        *stats.MeanCI          `json:"meanCI,omitempty"`
	Deterministic bool                   `json:"deterministic"`
}

// DeploymentComparison is the anchoring analysis of one deployment: high
// anchor against low anchor, with the no-anchor baseline described when present
type DeploymentComparison struct {
	Deployment      core.DeploymentID            `json:"deployment"`
	Fingerprint     core.SampleHash              `json:"fingerprint"`
	Low             GroupSummary                 `json:"low"`
	High            GroupSummary                 `json:"high"`
	Baseline        *GroupSummary                `json:"baseline,omitempty"`
	AnchoringEffect float64                      `json:"anchoringEffect"`
	Deterministic   bool                         `json:"deterministic"`
	Welch           *stats.WelchTTestResult      `json:"welch,omitempty"`
	EffectSize      *stats.EffectSizeResult      `json:"effectSize,omitempty"`
	Magnitude       EffectMagnitude              `json:"magnitude,omitempty"`
	Bootstrap       *stats.BootstrapCI           `json:"bootstrap,omitempty"`
	Permutation     *stats.PermutationTestResult `json:"permutation,omitempty"`
	MannWhitney     *stats.MannWhitneyResult     `json:"mannWhitney,omitempty"`
	AdjustedP       *float64                     `json:"adjustedP,omitempty"`
	Significant     bool                         `json:"significant"`
}

// SkippedDeployment records a deployment left out of the analysis
type SkippedDeployment struct {
	Deployment core.DeploymentID `json:"deployment"`
	Reason     string            `json:"reason"`
}

// SourceSummary counts what was read from one input
type SourceSummary struct {
	Source  string `json:"source"`
	Trials  int    `json:"trials"`
	Skipped int    `json:"skipped"`
	Unknown int    `json:"unknown"`
}

// ComparisonReport is the full output of CompareAll
type ComparisonReport struct {
	RunID          core.RunID             `json:"runId"`
	GeneratedAt    core.Timestamp         `json:"generatedAt"`
	Config         ComparisonConfig       `json:"config"`
	Sources        []SourceSummary        `json:"sources"`
	Comparisons    []DeploymentComparison `json:"comparisons"`
	Skipped        []SkippedDeployment    `json:"skipped,omitempty"`
	NumComparisons int                    `json:"numComparisons"`
	CorrectedAlpha float64                `json:"correctedAlpha"`
	RuntimeMs      int64                  `json:"runtimeMs"`
}

// ComparisonService runs the standard low-versus-high anchoring comparison
// for every deployment found in its trial sources
type ComparisonService struct {
	sources []ports.TrialSource
	cfg     ComparisonConfig
	logger  *internal.Logger
}

// NewComparisonService creates a comparison service over the given sources
func NewComparisonService(cfg ComparisonConfig, sources ...ports.TrialSource) *ComparisonService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Correction == "" {
		cfg.Correction = CorrectionBonferroni
	}
	return &ComparisonService{sources: sources, cfg: cfg, logger: internal.NewDefaultLogger()}
}

// WithLogger replaces the LOG_LEVEL-derived logger
func (s *ComparisonService) WithLogger(logger *internal.Logger) *ComparisonService {
	s.logger = logger
	return s
}

// CompareAll reads every source, groups trials per deployment and compares
// the deployments in parallel. The first read or statistics failure cancels
// the remaining work.
func (s *ComparisonService) CompareAll(ctx context.Context) (*ComparisonReport, error) {
	startTime := time.Now()
	if len(s.sources) == 0 {
		return nil, errors.InvalidInput("no trial sources given")
	}

	batches, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ComparisonReport{
		RunID:       core.NewRunID(),
		GeneratedAt: core.Now(),
		Config:      s.cfg,
	}
	var trials []trial.Trial
	for _, b := range batches {
		report.Sources = append(report.Sources, SourceSummary{
			Source:  b.Source,
			Trials:  len(b.Trials),
			Skipped: b.Skipped,
			Unknown: b.Unknown,
		})
		trials = append(trials, b.Trials...)
	}

	var eligible []*trial.Groups
	for _, g := range trial.GroupByDeployment(trials) {
		if reason := s.skipReason(g); reason != "" {
			s.logger.Warn("[ComparisonService] skipping %s: %s", g.Deployment, reason)
			report.Skipped = append(report.Skipped, SkippedDeployment{Deployment: g.Deployment, Reason: reason})
			continue
		}
		eligible = append(eligible, g)
	}

	comparisons := make([]DeploymentComparison, len(eligible))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)
	for i, g := range eligible {
		i, g := i, g // per-iteration copies for Go 1.21 loop semantics
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := s.CompareGroups(g)
			if err != nil {
				return errors.Wrapf(err, "comparison failed for %s", g.Deployment)
			}
			s.logger.Debug("[ComparisonService] %s: effect %+.2f, deterministic=%t", g.Deployment, c.AnchoringEffect, c.Deterministic)
			comparisons[i] = c
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := applyCorrection(comparisons, s.cfg); err != nil {
		return nil, err
	}
	report.Comparisons = comparisons
	for _, c := range comparisons {
		if c.Welch != nil {
			report.NumComparisons++
		}
	}
	report.CorrectedAlpha = s.cfg.Alpha
	if s.cfg.Correction == CorrectionBonferroni && report.NumComparisons > 0 {
		report.CorrectedAlpha = s.cfg.Alpha / float64(report.NumComparisons)
	}
	report.RuntimeMs = time.Since(startTime).Milliseconds()

	s.logger.Info("[ComparisonService] run %s: %d deployments compared, %d skipped in %dms",
		report.RunID, len(comparisons), len(report.Skipped), report.RuntimeMs)
	return report, nil
}

// CompareDeployment reads the sources and compares a single deployment,
// ignoring the minimum group size as long as each arm has two observations
func (s *ComparisonService) CompareDeployment(ctx context.Context, deployment core.DeploymentID) (*DeploymentComparison, error) {
	batches, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	var trials []trial.Trial
	for _, b := range batches {
		trials = append(trials, b.Trials...)
	}

	for _, g := range trial.GroupByDeployment(trials) {
		if g.Deployment != deployment {
			continue
		}
		c, err := s.CompareGroups(g)
		if err != nil {
			return nil, errors.Wrapf(err, "comparison failed for %s", deployment)
		}
		comparisons := []DeploymentComparison{c}
		if err := applyCorrection(comparisons, s.cfg); err != nil {
			return nil, err
		}
		return &comparisons[0], nil
	}
	return nil, errors.NotFound(core.ErrDeploymentNotFound, deployment.String())
}

func (s *ComparisonService) readAll(ctx context.Context) ([]*trial.Batch, error) {
	batches := make([]*trial.Batch, len(s.sources))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)
	for i, src := range s.sources {
		i, src := i, src // per-iteration copies for Go 1.21 loop semantics
		group.Go(func() error {
			b, err := src.ReadTrials(gctx)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to read trials")
	}
	return batches, nil
}

func (s *ComparisonService) skipReason(g *trial.Groups) string {
	minSize := s.cfg.MinGroupSize
	if minSize < 2 {
		minSize = 2
	}
	switch {
	case len(g.Low) < minSize && len(g.High) < minSize:
		return fmt.Sprintf("low and high have %d and %d observations, need %d", len(g.Low), len(g.High), minSize)
	case len(g.Low) < minSize:
		return core.NewInsufficientDataError("low", len(g.Low), minSize).Error()
	case len(g.High) < minSize:
		return core.NewInsufficientDataError("high", len(g.High), minSize).Error()
	}
	return ""
}

// CompareGroups analyzes a single deployment. Both arms need at least two
// observations. When neither arm varies the deployment is deterministic:
// the t-test and effect size are undefined and are left out.
func (s *ComparisonService) CompareGroups(g *trial.Groups) (DeploymentComparison, error) {
	c := DeploymentComparison{
		Deployment:  g.Deployment,
		Fingerprint: g.Fingerprint(),
	}

	var err error
	if c.Low, err = summarize(g.Low, s.cfg.Alpha); err != nil {
		return c, err
	}
	if c.High, err = summarize(g.High, s.cfg.Alpha); err != nil {
		return c, err
	}
	if len(g.None) > 0 {
		baseline, err := summarize(g.None, s.cfg.Alpha)
		if err != nil {
			return c, err
		}
		c.Baseline = &baseline
	}

	c.AnchoringEffect = c.High.Descriptive.Mean - c.Low.Descriptive.Mean
	c.Deterministic = c.Low.Deterministic && c.High.Deterministic

	boot, err := stats.BootstrapMeanDifferenceCI(g.High, g.Low, stats.BootstrapConfig{
		Alpha:      s.cfg.Alpha,
		Iterations: s.cfg.BootstrapIterations,
		Seed:       s.cfg.Seed,
	})
	if err != nil {
		return c, err
	}
	c.Bootstrap = &boot

	if c.Deterministic {
		return c, nil
	}

	welch, err := stats.WelchTTestTwoSided(g.High, g.Low)
	if err != nil {
		return c, err
	}
	c.Welch = &welch

	effect, err := stats.EffectSizeTwoSample(g.High, g.Low)
	if err != nil {
		return c, err
	}
	c.EffectSize = &effect
	c.Magnitude = InterpretEffectSize(effect.CohensD)

	if s.cfg.Permutation {
		perm, err := stats.PermutationMeanDifferenceTest(g.High, g.Low, stats.PermutationConfig{
			Iterations: s.cfg.PermutationIterations,
			Seed:       s.cfg.Seed,
		})
		if err != nil {
			return c, err
		}
		c.Permutation = &perm
	}

	if s.cfg.RankTest {
		mw, err := stats.MannWhitneyU(g.High, g.Low)
		if err != nil {
			return c, err
		}
		c.MannWhitney = &mw
	}

	return c, nil
}

func summarize(values []float64, alpha float64) (GroupSummary, error) {
	ds, err := stats.ComputeDescriptiveStats(values)
	if err != nil {
		return GroupSummary{}, err
	}
	summary := GroupSummary{Descriptive: ds}
	if ds.N >= 2 {
		summary.Deterministic = isConstant(values)
		ci, err := stats.MeanConfidenceInterval(values, alpha)
		if err != nil {
			return GroupSummary{}, err
		}
		summary.MeanCI = &ci
	}
	return summary, nil
}

// isConstant uses the same variance as the Welch and effect-size zero checks,
// so a flagged arm never reaches them as a zero-variance failure
func isConstant(values []float64) bool {
	if stat.Variance(values, nil) == 0 {
		return true
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// applyCorrection adjusts the Welch p-values of non-deterministic comparisons
// in place and sets Significant against alpha
func applyCorrection(comparisons []DeploymentComparison, cfg ComparisonConfig) error {
	var idx []int
	var raw []float64
	for i, c := range comparisons {
		if c.Welch != nil {
			idx = append(idx, i)
			raw = append(raw, c.Welch.PTwoSided)
		}
	}
	if len(raw) == 0 {
		return nil
	}

	var adjusted []float64
	var err error
	switch cfg.Correction {
	case CorrectionHolm:
		adjusted, err = stats.HolmAdjust(raw)
	case CorrectionNone:
		adjusted = raw
	default:
		adjusted, err = stats.BonferroniAdjust(raw)
	}
	if err != nil {
		return errors.Wrap(err, "failed to adjust p-values")
	}

	for k, i := range idx {
		p := adjusted[k]
		comparisons[i].AdjustedP = &p
		comparisons[i].Significant = p < cfg.Alpha
	}
	return nil
}

// EffectMagnitude is the conventional label for a Cohen's d
type EffectMagnitude string

const (
	MagnitudeNegligible EffectMagnitude = "negligible"
	MagnitudeSmall      EffectMagnitude = "small"
	MagnitudeMedium     EffectMagnitude = "medium"
	MagnitudeLarge      EffectMagnitude = "large"
)

// InterpretEffectSize labels |d| with Cohen's thresholds 0.2, 0.5 and 0.8
func InterpretEffectSize(d float64) EffectMagnitude {
	abs := math.Abs(d)
	switch {
	case abs < 0.2:
		return MagnitudeNegligible
	case abs < 0.5:
		return MagnitudeSmall
	case abs < 0.8:
		return MagnitudeMedium
	}
	return MagnitudeLarge
}
