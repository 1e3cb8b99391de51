package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bais/app"
	"bais/domain/trial"
	"bais/internal/stats"
)

// Deterministic marks cells whose statistic is undefined because neither
// arm varied
const Deterministic = "det."

const notAvailable = "N/A"

// RenderMarkdown renders a comparison report as a Markdown document
func RenderMarkdown(r *app.ComparisonReport) string {
	var b strings.Builder

	b.WriteString("# Anchoring Analysis\n\n")
	fmt.Fprintf(&b, "Run: `%s`  \nGenerated: %s\n\n", r.RunID, r.GeneratedAt)

	b.WriteString("## Summary\n\n")
	b.WriteString(summaryTable(r))
	b.WriteString("\n\n")

	b.WriteString(correctionSection(r))

	if len(r.Skipped) > 0 {
		b.WriteString("## Skipped Deployments\n\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "- %s: %s\n", trial.ShortDeploymentName(s.Deployment), s.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Sources\n\n")
	tbl := table.NewWriter()
	tbl.AppendHeader(table.Row{"Source", "Trials", "Skipped lines", "Unknown condition"})
	for _, s := range r.Sources {
		tbl.AppendRow(table.Row{s.Source, s.Trials, s.Skipped, s.Unknown})
	}
	b.WriteString(tbl.RenderMarkdown())
	b.WriteString("\n\n")

	b.WriteString("## Notes\n\n")
	fmt.Fprintf(&b, "- Effect is mean(high anchor) - mean(low anchor); the bootstrap interval uses %d resamples, seed %d.\n",
		r.Config.BootstrapIterations, r.Config.Seed)
	b.WriteString("- Mean intervals use the Student-t distribution with n-1 degrees of freedom.\n")
	fmt.Fprintf(&b, "- `%s` marks a deployment whose answers never varied within either arm.\n", Deterministic)

	return b.String()
}

func summaryTable(r *app.ComparisonReport) string {
	alphaPct := int(math.Round((1 - r.Config.Alpha) * 100))

	tbl := table.NewWriter()
	tbl.AppendHeader(table.Row{
		"Model",
		"n (low/high)",
		fmt.Sprintf("Mean Low [%d%% CI]", alphaPct),
		fmt.Sprintf("Mean High [%d%% CI]", alphaPct),
		"Effect",
		fmt.Sprintf("Bootstrap [%d%% CI]", alphaPct),
		"Welch",
		"Cohen's d",
		"p (adj.)",
	})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})

	for _, c := range r.Comparisons {
		tbl.AppendRow(table.Row{
			trial.ShortDeploymentName(c.Deployment),
			fmt.Sprintf("%d/%d", c.Low.Descriptive.N, c.High.Descriptive.N),
			FormatMeanCI(c.Low),
			FormatMeanCI(c.High),
			FormatEffect(c.AnchoringEffect),
			FormatBootstrap(c.Bootstrap),
			welchCell(c),
			effectCell(c),
			adjustedCell(c),
		})
	}
	return tbl.RenderMarkdown()
}

func correctionSection(r *app.ComparisonReport) string {
	var b strings.Builder
	b.WriteString("## Multiple Comparisons\n\n")
	fmt.Fprintf(&b, "- **Correction**: %s\n", r.Config.Correction)
	fmt.Fprintf(&b, "- **Number of comparisons**: %d\n", r.NumComparisons)
	if r.Config.Correction == app.CorrectionBonferroni && r.NumComparisons > 0 {
		fmt.Fprintf(&b, "- **Corrected α**: %.4f (%.2f / %d)\n", r.CorrectedAlpha, r.Config.Alpha, r.NumComparisons)
	}
	significant := 0
	for _, c := range r.Comparisons {
		if c.Significant {
			significant++
		}
	}
	fmt.Fprintf(&b, "- **Significant after correction**: %d / %d\n\n", significant, r.NumComparisons)
	return b.String()
}

// FormatMeanCI renders "mean [lower, upper]" with one decimal, or just the
// mean when the arm is too small for an interval
func FormatMeanCI(g app.GroupSummary) string {
	if g.Descriptive.N == 0 {
		return notAvailable
	}
	if g.MeanCI == nil {
		return fmt.Sprintf("%.1f", g.Descriptive.Mean)
	}
	return fmt.Sprintf("%.1f [%.1f, %.1f]", g.Descriptive.Mean, g.MeanCI.Lower, g.MeanCI.Upper)
}

// FormatEffect renders a signed mean difference in months
func FormatEffect(effect float64) string {
	return fmt.Sprintf("%+.1fmo", effect)
}

// FormatBootstrap renders a bootstrap interval
func FormatBootstrap(ci *stats.BootstrapCI) string {
	if ci == nil {
		return notAvailable
	}
	return fmt.Sprintf("[%.1f, %.1f]", ci.Lower, ci.Upper)
}

// FormatWelch renders "t(df)=t, p" in the style used in the write-ups
func FormatWelch(w *stats.WelchTTestResult) string {
	return fmt.Sprintf("t(%.1f)=%.2f, %s", w.DF, w.T, FormatP(w.PTwoSided))
}

// FormatP renders a p-value with three decimals, or "p<.001"
func FormatP(p float64) string {
	if p < 0.001 {
		return "p<.001"
	}
	return fmt.Sprintf("p=%.3f", p)
}

func welchCell(c app.DeploymentComparison) string {
	switch {
	case c.Deterministic:
		return Deterministic
	case c.Welch == nil:
		return notAvailable
	}
	return FormatWelch(c.Welch)
}

func effectCell(c app.DeploymentComparison) string {
	switch {
	case c.Deterministic:
		return Deterministic
	case c.EffectSize == nil:
		return notAvailable
	}
	return fmt.Sprintf("%.2f (%s)", c.EffectSize.CohensD, c.Magnitude)
}

func adjustedCell(c app.DeploymentComparison) string {
	switch {
	case c.Deterministic:
		return Deterministic
	case c.AdjustedP == nil:
		return notAvailable
	}
	cell := FormatP(*c.AdjustedP)
	if c.Significant {
		cell += " *"
	}
	return cell
}
