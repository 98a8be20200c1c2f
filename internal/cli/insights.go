package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/insight"
	"github.com/roach88/enrolscan/internal/report"
)

// InsightsOptions holds flags for the insights command.
type InsightsOptions struct {
	*RootOptions
	RunSettings
}

// InsightsResult is the JSON payload of a successful insights run.
type InsightsResult struct {
	Datasets  []InsightEntry `json:"datasets"`
	Artifacts []string       `json:"artifacts"`
}

// InsightEntry is one dataset's headline numbers.
type InsightEntry struct {
	Name        string  `json:"name"`
	Rows        int     `json:"rows"`
	Cols        int     `json:"cols"`
	MissingRate float64 `json:"missing_rate"`
	States      int     `json:"states"`
	Districts   int     `json:"districts"`
	DateMin     string  `json:"date_min,omitempty"`
	DateMax     string  `json:"date_max,omitempty"`
}

// NewInsightsCommand creates the insights command.
func NewInsightsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsightsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insights [data-dir]",
		Short: "Summarize the extracts without scoring them",
		Long: `Profile each extract folder and write the insight reports.

Computes per-dataset KPIs, state share tables, daily volume series, and
volatility without running the scoring model. Folders that are absent are
skipped, so a partial drop still yields a report.

Example:
  enrolscan insights ./data`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.DataDir = args[0]
			}
			return runInsights(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "reports", "directory for report artifacts")

	return cmd
}

func runInsights(opts *InsightsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.Verbose)

	cfg, err := BuildConfig(cmd, opts.RunSettings)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	sources := make([]insight.Source, 0, len(dataset.Kinds))
	for _, k := range dataset.Kinds {
		sources = append(sources, insight.Source{Name: string(k), Dir: cfg.DatasetDir(k)})
	}

	profiles, err := insight.Collect(sources, nil)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Profiled %d dataset(s) under %s", len(profiles), cfg.DataDir)

	writer := report.NewWriter(cfg.OutDir, nil)
	artifacts, err := writer.WriteInsights(profiles)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	return outputInsightsResult(formatter, profiles, artifacts)
}

func outputInsightsResult(formatter *OutputFormatter, profiles []insight.DatasetProfile, artifacts []string) error {
	result := InsightsResult{Artifacts: artifacts}
	for _, p := range profiles {
		entry := InsightEntry{
			Name:        p.Name,
			Rows:        p.KPIs.Rows,
			Cols:        p.KPIs.Cols,
			MissingRate: p.KPIs.MissingRate,
			States:      p.KPIs.States,
			Districts:   p.KPIs.Districts,
		}
		if p.KPIs.HasDates {
			entry.DateMin = p.KPIs.DateMin.String()
			entry.DateMax = p.KPIs.DateMax.String()
		}
		result.Datasets = append(result.Datasets, entry)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Profiled %d dataset(s)\n", len(result.Datasets))
	for _, e := range result.Datasets {
		fmt.Fprintf(formatter.Writer, "  %s: %d rows, %d states, %d districts\n", e.Name, e.Rows, e.States, e.Districts)
	}
	fmt.Fprintln(formatter.Writer, "  Artifacts:")
	for _, a := range artifacts {
		fmt.Fprintf(formatter.Writer, "    %s\n", a)
	}
	return nil
}
