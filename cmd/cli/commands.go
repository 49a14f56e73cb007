package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"qastats/adapters/excel"
	"qastats/app"
	"qastats/internal"
	"qastats/internal/config"

	"github.com/spf13/cobra"
)

// options are the flags shared by every command
type options struct {
	sheet   string
	by      string
	groupA  string
	groupB  string
	target  string
	level   float64
	asJSON  bool
	verbose bool
	maxRows int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "qastats",
		Short:         "Compare two groups of a spreadsheet column with Levene, t-tests and confidence intervals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().IntVar(&opts.maxRows, "max-rows", -1, "Stop reading each sheet after this many data rows (0 = unlimited, default from MAX_ROWS)")

	rootCmd.AddCommand(
		newSheetsCmd(opts),
		newColumnsCmd(opts),
		newGroupsCmd(opts),
		newTestCmd(opts, app.TestLevene, "Levene test for equal variances (median-centred)"),
		newTestCmd(opts, app.TestAuto, "T-test; Levene picks the pooled or Welch formula"),
		newTestCmd(opts, app.TestPooled, "Student t-test with pooled variance"),
		newTestCmd(opts, app.TestWelch, "Welch t-test for unequal variances"),
		newTestCmd(opts, app.TestInterval, "Confidence interval for the difference in means"),
		newSweepCmd(opts),
	)
	return rootCmd
}

// env loads configuration and builds the logger and reader for one command
type env struct {
	cfg    *config.Config
	logger *internal.Logger
	out    io.Writer
}

func (o *options) env(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.maxRows >= 0 {
		cfg.Data.MaxRows = o.maxRows
	}

	level := internal.LogLevelWarn
	if o.verbose {
		level = internal.LogLevelDebug
	}
	logger := internal.NewLoggerWithWriter(level, cmd.ErrOrStderr())
	internal.DefaultLogger = logger

	return &env{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}, nil
}

func (e *env) reader(path string) *excel.DataReader {
	config := excel.DefaultReaderConfig()
	config.MaxRows = e.cfg.Data.MaxRows
	return excel.NewDataReader(path).WithConfig(config)
}

// readSheet reads the requested sheet, or the first one when none is given
func (e *env) readSheet(path, sheet string) (*excel.ExcelData, error) {
	r := e.reader(path)
	if sheet == "" {
		return r.ReadData()
	}
	return r.ReadSheet(sheet)
}

func (o *options) print(out io.Writer, v interface{}, text string) error {
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}

func addSheetFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet name (default: first sheet)")
}

func addGroupFlags(cmd *cobra.Command, opts *options) {
	addSheetFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.by, "by", "", "Filter column that defines the groups")
	cmd.Flags().StringVar(&opts.groupA, "a", "", "Value of the filter column for group A")
	cmd.Flags().StringVar(&opts.groupB, "b", "", "Value of the filter column for group B")
	_ = cmd.MarkFlagRequired("by")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
}

func newSheetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets FILE",
		Short: "List the sheets of an Excel or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			sheets, err := e.reader(args[0]).Sheets()
			if err != nil {
				return err
			}
			return opts.print(e.out, map[string]interface{}{"sheets": sheets}, strings.Join(sheets, "\n"))
		},
	}
}

func newColumnsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns FILE",
		Short: "List the column headers of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			data, err := e.readSheet(args[0], opts.sheet)
			if err != nil {
				return err
			}
			return opts.print(e.out, map[string]interface{}{
				"sheet":   data.Sheet,
				"columns": data.Headers,
				"rows":    len(data.Rows),
			}, strings.Join(data.Headers, "\n"))
		},
	}
	addSheetFlag(cmd, opts)
	return cmd
}

func newGroupsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups FILE",
		Short: "List the distinct values of a filter column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			data, err := e.readSheet(args[0], opts.sheet)
			if err != nil {
				return err
			}
			values, err := data.DistinctValues(opts.by)
			if err != nil {
				return err
			}
			return opts.print(e.out, map[string]interface{}{"column": opts.by, "values": values}, strings.Join(values, "\n"))
		},
	}
	addSheetFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.by, "by", "", "Filter column")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newTestCmd(opts *options, test app.ComparisonTest, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(test) + " FILE",
		Short: short,
		Long: short + `.

Rows are split by the --by column into groups --a and --b; the --target column
is cleaned (decimal commas accepted, text dropped) before testing.

Example: qastats ` + string(test) + ` results.xlsx --by Line --a L1 --b L2 --target Weight`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			data, err := e.readSheet(args[0], opts.sheet)
			if err != nil {
				return err
			}

			svc := app.NewComparisonService(e.logger, e.cfg.Analysis.DefaultConfidence)
			report, err := svc.Run(cmd.Context(), data, app.ComparisonRequest{
				Sheet:           data.Sheet,
				FilterColumn:    opts.by,
				GroupA:          opts.groupA,
				GroupB:          opts.groupB,
				Target:          opts.target,
				Test:            test,
				ConfidenceLevel: opts.level,
			})
			if err != nil {
				return err
			}
			return opts.print(e.out, report, report.Text())
		},
	}
	addGroupFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.target, "target", "", "Numeric column to compare")
	_ = cmd.MarkFlagRequired("target")
	if test == app.TestInterval {
		cmd.Flags().Float64Var(&opts.level, "level", 0, "Confidence level in percent, e.g. 90, 95 or 99 (default from DEFAULT_CONFIDENCE)")
	}
	return cmd
}

func newSweepCmd(opts *options) *cobra.Command {
	var columns []string
	var workers int

	cmd := &cobra.Command{
		Use:   "sweep FILE",
		Short: "Run Levene, the selected t-test and a confidence interval on every numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			data, err := e.readSheet(args[0], opts.sheet)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = e.cfg.Analysis.SweepWorkers
			}

			svc := app.NewSweepService(app.NewComparisonService(e.logger, e.cfg.Analysis.DefaultConfidence), workers, e.logger)
			result, err := svc.Sweep(cmd.Context(), data, app.SweepRequest{
				Sheet:           data.Sheet,
				FilterColumn:    opts.by,
				GroupA:          opts.groupA,
				GroupB:          opts.groupB,
				Columns:         columns,
				ConfidenceLevel: opts.level,
			})
			if err != nil {
				return err
			}
			return opts.print(e.out, result, sweepTable(result))
		},
	}
	addGroupFlags(cmd, opts)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to test (default: all but --by)")
	cmd.Flags().Float64Var(&opts.level, "level", 0, "Confidence level in percent (default from DEFAULT_CONFIDENCE)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Columns tested concurrently (default from SWEEP_WORKERS)")
	return cmd
}

// sweepTable renders one aligned line per column
func sweepTable(result *app.SweepResult) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tN1\tN2\tLEVENE P\tMETHOD\tT\tP-VALUE\tDIFF\tCI")
	for _, row := range result.Rows {
		if row.Error != "" {
			fmt.Fprintf(tw, "%s\t%d\t%d\t-\t-\t-\t-\t-\t%s\n", row.Column, row.N1, row.N2, row.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%s\t%.3f\t%.4f\t%.2f\t[%.2f, %.2f]\n",
			row.Column, row.N1, row.N2, row.Levene.PValue, row.Method,
			row.Comparison.Statistic, row.Comparison.PValue,
			row.Interval.MeanDifference, row.Interval.Lower, row.Interval.Upper)
	}
	tw.Flush()
	if len(result.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped (no numeric data in a group): %s", strings.Join(result.Skipped, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
