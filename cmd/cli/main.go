package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bais/adapters/excel"
	"bais/adapters/jsonl"
	"bais/adapters/report"
	"bais/app"
	"bais/domain/core"
	"bais/domain/trial"
	"bais/internal"
	"bais/internal/api"
	"bais/internal/config"
	"bais/internal/errors"
	"bais/internal/stats"
	"bais/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "biasstat",
		Short:         "Statistics for LLM cognitive-bias experiments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "", "log verbosity: error, warn, info, debug (default $LOG_LEVEL or info)")

	rootCmd.AddCommand(
		newDescribeCmd(cfg),
		newCompareCmd(cfg),
		newProportionCmd(),
		newChisqCmd(),
		newServeCmd(cfg),
	)
	return rootCmd
}

// sourceFlags are shared by commands that read trial files
type sourceFlags struct {
	conditionColumn string
	valueColumn     string
	modelColumn     string
	sheet           string
	lowAnchor       float64
	highAnchor      float64
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.conditionColumn, "condition-column", "condition", "Condition column for CSV/XLSX input")
	cmd.Flags().StringVar(&f.valueColumn, "value-column", "value", "Value column for CSV/XLSX input")
	cmd.Flags().StringVar(&f.modelColumn, "model-column", "model", "Deployment column for CSV/XLSX input")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().Float64Var(&f.lowAnchor, "low-anchor", trial.DefaultLowAnchorMonths, "anchorMonths value of the low arm in JSONL input")
	cmd.Flags().Float64Var(&f.highAnchor, "high-anchor", trial.DefaultHighAnchorMonths, "anchorMonths value of the high arm in JSONL input")
}

// sourceFor picks a reader by file extension
func (f *sourceFlags) sourceFor(path string) (ports.TrialSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		opts := jsonl.DefaultOptions()
		opts.LowAnchorMonths = f.lowAnchor
		opts.HighAnchorMonths = f.highAnchor
		return jsonl.NewReader(path, opts), nil
	case ".csv", ".xlsx":
		opts := excel.DefaultOptions()
		opts.ConditionColumn = f.conditionColumn
		opts.ValueColumn = f.valueColumn
		opts.DeploymentColumn = f.modelColumn
		opts.Sheet = f.sheet
		return excel.NewDataReader(path, opts), nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unsupported input %s (want .jsonl, .csv or .xlsx)", path))
}

func (f *sourceFlags) sources(paths []string) ([]ports.TrialSource, error) {
	sources := make([]ports.TrialSource, 0, len(paths))
	for _, p := range paths {
		src, err := f.sourceFor(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func newDescribeCmd(cfg *config.Config) *cobra.Command {
	var file string
	var sf sourceFlags

	cmd := &cobra.Command{
		Use:   "describe [values...]",
		Short: "Descriptive statistics for a sample or for every group in a trial file",
		Long: `Describe a sample given as numbers, or every deployment and condition of a trial file.

Example: biasstat describe 4 6 5 8 3
         biasstat describe --file results/anchoring.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return runDescribeFile(cmd.Context(), cmd.OutOrStdout(), &sf, file, cfg.Analysis.Alpha)
			}
			values, err := parseFloats(args)
			if err != nil {
				return err
			}
			return runDescribeValues(cmd.OutOrStdout(), values, cfg.Analysis.Alpha)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Trial file (.jsonl, .csv, .xlsx)")
	sf.register(cmd)
	return cmd
}

func runDescribeValues(w io.Writer, values []float64, alpha float64) error {
	ds, err := stats.ComputeDescriptiveStats(values)
	if err != nil {
		return err
	}
	five, err := stats.ComputeFiveNumberSummary(values)
	if err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"n", "mean", "median", "sd", "se", "min", "q1", "q3", "max"})
	tbl.AppendRow(table.Row{ds.N, fmtFloat(ds.Mean), fmtFloat(ds.Median), fmtFloat(ds.SampleStdDev), fmtFloat(ds.StandardError),
		fmtFloat(five.Min), fmtFloat(five.Q1), fmtFloat(five.Q3), fmtFloat(five.Max)})
	tbl.Render()

	if ds.N >= 2 {
		ci, err := stats.MeanConfidenceInterval(values, alpha)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.0f%% CI for the mean: [%s, %s]\n", (1-alpha)*100, fmtFloat(ci.Lower), fmtFloat(ci.Upper))
	}
	return nil
}

func runDescribeFile(ctx context.Context, w io.Writer, sf *sourceFlags, path string, alpha float64) error {
	src, err := sf.sourceFor(path)
	if err != nil {
		return err
	}
	batch, err := src.ReadTrials(ctx)
	if err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"model", "condition", "n", "mean", "median", "sd", "mean CI"})
	for _, g := range trial.GroupByDeployment(batch.Trials) {
		for _, c := range []trial.Condition{trial.ConditionNone, trial.ConditionLow, trial.ConditionHigh} {
			values := g.Sample(c)
			if len(values) == 0 {
				continue
			}
			ds, err := stats.ComputeDescriptiveStats(values)
			if err != nil {
				return err
			}
			ciCell := "-"
			if ds.N >= 2 {
				ci, err := stats.MeanConfidenceInterval(values, alpha)
				if err != nil {
					return err
				}
				ciCell = fmt.Sprintf("[%s, %s]", fmtFloat(ci.Lower), fmtFloat(ci.Upper))
			}
			tbl.AppendRow(table.Row{trial.ShortDeploymentName(g.Deployment), c, ds.N, fmtFloat(ds.Mean), fmtFloat(ds.Median), fmtFloat(ds.SampleStdDev), ciCell})
		}
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d trials", len(batch.Trials)), fmt.Sprintf("%d skipped", batch.Skipped), fmt.Sprintf("%d unknown", batch.Unknown)})
	tbl.Render()
	return nil
}

func newCompareCmd(cfg *config.Config) *cobra.Command {
	var (
		sf          sourceFlags
		format      string
		out         string
		correction  string
		deployment  string
		seed        uint32
		iterations  int
		alpha       float64
		workers     int
		minGroup    int
		permutation bool
		rankTest    bool
	)

	cmd := &cobra.Command{
		Use:   "compare [files...]",
		Short: "Compare high against low anchor responses for every deployment",
		Long: `Run the anchoring comparison: descriptive statistics and mean CIs per arm, Welch's t-test,
Cohen's d and Hedges' g, and a seeded bootstrap CI of the mean difference. P-values are
corrected across deployments.

Example: biasstat compare results/anchoring.jsonl --correction holm --format html --out report.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corr, err := app.ParseCorrection(correction)
			if err != nil {
				return err
			}
			sources, err := sf.sources(args)
			if err != nil {
				return err
			}

			runCfg := app.NewComparisonConfig(cfg.Analysis)
			runCfg.Correction = corr
			runCfg.Permutation = permutation
			runCfg.RankTest = rankTest
			if cmd.Flags().Changed("seed") {
				runCfg.Seed = seed
			}
			if cmd.Flags().Changed("iterations") {
				runCfg.BootstrapIterations = iterations
			}
			if cmd.Flags().Changed("alpha") {
				runCfg.Alpha = alpha
			}
			if cmd.Flags().Changed("workers") {
				runCfg.Workers = workers
			}
			if cmd.Flags().Changed("min-group") {
				runCfg.MinGroupSize = minGroup
			}

			logger, err := loggerFor(cmd)
			if err != nil {
				return err
			}
			svc := app.NewComparisonService(runCfg, sources...).WithLogger(logger)
			w, closeOut, err := openOutput(cmd.OutOrStdout(), out)
			if err != nil {
				return err
			}
			defer closeOut()

			if deployment != "" {
				c, err := svc.CompareDeployment(cmd.Context(), core.DeploymentID(deployment))
				if err != nil {
					return err
				}
				return writeJSON(w, c)
			}

			rep, err := svc.CompareAll(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return writeJSON(w, rep)
			case "html":
				_, err = w.Write(report.RenderHTML(rep))
			default:
				_, err = io.WriteString(w, report.RenderMarkdown(rep))
			}
			return err
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, html or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&correction, "correction", "bonferroni", "Multiple-comparison correction: bonferroni, holm or none")
	cmd.Flags().StringVar(&deployment, "deployment", "", "Compare only this deployment and print JSON")
	cmd.Flags().Uint32Var(&seed, "seed", cfg.Analysis.Seed, "Seed for bootstrap and permutation resampling")
	cmd.Flags().IntVar(&iterations, "iterations", cfg.Analysis.BootstrapIterations, "Bootstrap iterations")
	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Analysis.Alpha, "Significance level")
	cmd.Flags().IntVar(&workers, "workers", cfg.Analysis.Workers, "Deployments analyzed in parallel")
	cmd.Flags().IntVar(&minGroup, "min-group", cfg.Analysis.MinGroupSize, "Minimum observations per arm")
	cmd.Flags().BoolVar(&permutation, "permutation", false, "Also run a permutation test of the mean difference")
	cmd.Flags().BoolVar(&rankTest, "rank-test", false, "Also run a Mann-Whitney U test")
	return cmd
}

func newProportionCmd() *cobra.Command {
	var alpha float64

	cmd := &cobra.Command{
		Use:   "proportion successes n [successesB nB]",
		Short: "Wilson interval for one proportion, or a two-proportion z-test",
		Long: `With two arguments, print the Wilson score and Wald intervals for successes/n.
With four, compare two proportions with the pooled z-test.

Example: biasstat proportion 37 50
         biasstat proportion 37 50 21 50`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 && len(args) != 4 {
				return fmt.Errorf("accepts 2 or 4 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := parseInts(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if len(counts) == 4 {
				res, err := stats.ProportionZTest(counts[0], counts[1], counts[2], counts[3])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "z=%.3f, %s (two-sided)\n", res.Z, report.FormatP(res.PTwoSided))
				return nil
			}

			wilson, err := stats.ProportionCIWithAlpha(counts[0], counts[1], alpha)
			if err != nil {
				return err
			}
			wald, err := stats.ProportionTest(counts[0], counts[1], 1-alpha)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "proportion=%.4f\n", wald.Proportion)
			fmt.Fprintf(w, "Wilson %.0f%% CI: [%.4f, %.4f]\n", (1-alpha)*100, wilson.Lower, wilson.Upper)
			fmt.Fprintf(w, "Wald   %.0f%% CI: [%.4f, %.4f] (se %.4f)\n", (1-alpha)*100, wald.Lower, wald.Upper, wald.StandardError)
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", stats.DefaultProportionAlpha, "Significance level")
	return cmd
}

func newChisqCmd() *cobra.Command {
	var expected string

	cmd := &cobra.Command{
		Use:   "chisq table",
		Short: "Chi-square test of independence or goodness of fit",
		Long: `Rows are separated by ';' and cells by ','. With --expected the single row of
observed counts is tested against the expected counts instead.

Example: biasstat chisq "20,5;5,20"
         biasstat chisq "30,10" --expected "20,20"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if expected != "" {
				obs, err := parseFloats(strings.Split(args[0], ","))
				if err != nil {
					return err
				}
				exp, err := parseFloats(strings.Split(expected, ","))
				if err != nil {
					return err
				}
				res, err := stats.ChiSquareGoodnessOfFit(obs, exp)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "χ²(%d)=%.3f, %s\n", res.DF, res.ChiSquare, report.FormatP(res.PValue))
				return nil
			}

			observed, err := parseTable(args[0])
			if err != nil {
				return err
			}
			res, err := stats.ChiSquareTest(observed)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "χ²(%d)=%.3f, %s\n", res.DF, res.ChiSquare, report.FormatP(res.PValue))
			return nil
		},
	}

	cmd.Flags().StringVar(&expected, "expected", "", "Expected counts for a goodness-of-fit test")
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statistics API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg := *cfg
			if port != "" {
				serverCfg.Server.Port = port
			}
			return api.NewServer(&serverCfg).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default: $PORT or 8080)")
	return cmd
}

func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %s", path)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Printf("[CLI] failed to close %s: %v", path, err)
		}
	}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid number %q", a))
		}
		values = append(values, v)
	}
	return values, nil
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid count %q", a))
		}
		values[i] = v
	}
	return values, nil
}

// parseTable reads "a,b;c,d" into rows of counts
func parseTable(s string) ([][]int, error) {
	var rows [][]int
	for _, row := range strings.Split(s, ";") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		cells, err := parseInts(strings.Split(row, ","))
		if err != nil {
			return nil, err
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func loggerFor(cmd *cobra.Command) (*internal.Logger, error) {
	value, _ := cmd.Flags().GetString("log-level")
	if value == "" {
		return internal.NewDefaultLogger(), nil
	}
	level, ok := internal.ParseLogLevel(value)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown log level %q", value))
	}
	return internal.NewLogger(level), nil
}
