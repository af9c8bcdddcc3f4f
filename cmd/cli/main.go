package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/app"
	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/config"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/dataset"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/logging"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/render"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// Output formats accepted by analyze.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatText     = "text"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOptions are shared by every subcommand.
type globalOptions struct {
	dateRange  string
	policyFile string
	asOf       string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "oppanalysis",
		Short:         "Analyse a sales pipeline export and score its open opportunities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dateRange, "date-range", "all", "Created-date window: "+joinRanges())
	flags.StringVar(&opts.policyFile, "policy", "", "YAML analysis policy overriding the defaults")
	flags.StringVar(&opts.asOf, "as-of", "", "Evaluate as of this RFC3339 time instead of now")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newScoreCmd(opts),
		newInspectCmd(opts),
	)
	return rootCmd
}

func joinRanges() string {
	names := make([]string, len(dataset.DateRanges))
	for i, r := range dataset.DateRanges {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// newService builds a report service without an archive.
func (o *globalOptions) newService() (*app.ReportService, error) {
	policy := analysis.DefaultPolicy()
	if o.policyFile != "" {
		loaded, err := config.LoadPolicyFile(o.policyFile)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: o.logLevel, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	svc := app.NewReportService(analysis.NewAnalyzer(policy), nil, logger, nil)
	if o.asOf != "" {
		at, err := time.Parse(time.RFC3339, o.asOf)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid --as-of %q (use RFC3339)", o.asOf))
		}
		svc.WithClock(func() time.Time { return at })
	}
	return svc, nil
}

func readRequest(path, dateRange string) (app.AnalyzeRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return app.AnalyzeRequest{}, errors.NotFound("file " + path)
		}
		return app.AnalyzeRequest{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return app.AnalyzeRequest{Filename: filepath.Base(path), Content: content, DateRange: dateRange}, nil
}

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Produce the full report for a CSV or XLSX export",
		Long: `Produce the full report: core metrics, segment performance, pipeline
health, win and loss patterns and ranked scores of open opportunities.

Example: oppanalysis analyze pipeline.csv --date-range ytd --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			req, err := readRequest(args[0], opts.dateRange)
			if err != nil {
				return err
			}
			report, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			out, err := formatReport(report, format)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", output)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", output, humanize.Bytes(uint64(len(out))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json, markdown, html or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func formatReport(report *analysis.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case formatJSON:
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode report")
		}
		return append(out, '\n'), nil
	case formatMarkdown, "md":
		return []byte(render.Markdown(report)), nil
	case formatHTML:
		return render.HTML(report)
	case formatText:
		return []byte(render.MetricsTable(report.CoreMetrics) + render.ScoreTable(report.ScoreOpenOpportunities, false)), nil
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown format %q", format))
	}
}

func newScoreCmd(opts *globalOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Rank open opportunities by historical win rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			req, err := readRequest(args[0], opts.dateRange)
			if err != nil {
				return err
			}
			report, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.ScoreTable(report.ScoreOpenOpportunities, verbose))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include the per-dimension rationale")
	return cmd
}

func newInspectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how an export maps onto the expected columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			req, err := readRequest(args[0], opts.dateRange)
			if err != nil {
				return err
			}
			prepared, err := svc.Prepare(req)
			if err != nil {
				return err
			}
			writeInspection(cmd.OutOrStdout(), req.Filename, prepared)
			return nil
		},
	}
}

func writeInspection(w io.Writer, filename string, p *app.Prepared) {
	present := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		present[c] = true
	}
	won, lost, open := opportunity.Partition(p.Dataset.Opportunities)

	fmt.Fprintf(w, "%s: %s rows in range %s (%d won, %d lost, %d open)\n\n",
		filename, humanize.Comma(int64(p.Dataset.Len())), p.DateRange, len(won), len(lost), len(open))

	cols := table.NewWriter()
	cols.SetOutputMirror(w)
	cols.SetStyle(table.StyleLight)
	cols.AppendHeader(table.Row{"Column", "Kind", "Present"})
	for _, c := range opportunity.RequiredColumns {
		status := "yes"
		if !present[c.Name] {
			status = "missing"
		}
		cols.AppendRow(table.Row{c.Name, c.Kind, status})
	}
	cols.Render()

	if len(p.Diagnostics) == 0 {
		fmt.Fprintln(w, "\nNo data quality issues.")
		return
	}
	diags := table.NewWriter()
	diags.SetOutputMirror(w)
	diags.SetStyle(table.StyleLight)
	diags.AppendHeader(table.Row{"Severity", "Column", "Detail"})
	for _, d := range p.Diagnostics {
		diags.AppendRow(table.Row{d.Severity, d.Column, d.Message})
	}
	fmt.Fprintln(w)
	diags.Render()
}
