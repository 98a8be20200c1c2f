package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/enrolscan/internal/config"
	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/profiling"
	"github.com/roach88/enrolscan/internal/report"
	"github.com/roach88/enrolscan/internal/table"
)

// DashboardOptions holds flags for the dashboard command.
type DashboardOptions struct {
	*RootOptions
	RunSettings
}

// DashboardResult is the JSON payload of a successful dashboard run.
type DashboardResult struct {
	Datasets  []DashboardDataset `json:"datasets"`
	Artifacts []string           `json:"artifacts"`
}

// DashboardDataset is one dataset's contribution to the comparison.
type DashboardDataset struct {
	Name        string  `json:"name"`
	Rows        int     `json:"rows"`
	MissingRate float64 `json:"missing_rate"`
}

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DashboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dashboard [data-dir]",
		Short: "Write cross-dataset comparison pages",
		Long: `Compare the extracts side by side.

Loads every extract folder, computes compact per-dataset metrics, and
writes the comparison chart pages plus an index.html linking them.

Example:
  enrolscan dashboard ./data`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.DataDir = args[0]
			}
			return runDashboard(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "reports", "directory for report artifacts")

	return cmd
}

func runDashboard(opts *DashboardOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.Verbose)

	cfg, err := BuildConfig(cmd, opts.RunSettings)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	entries, err := collectDashboardEntries(cfg)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Summarized %d dataset(s) under %s", len(entries), cfg.DataDir)

	writer := report.NewWriter(cfg.OutDir, nil)
	artifacts, err := writer.WriteDashboard(entries)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	return outputDashboardResult(formatter, entries, artifacts)
}

// collectDashboardEntries summarizes each extract folder, skipping absent
// folders and treating fileless ones as empty.
func collectDashboardEntries(cfg config.Config) ([]report.DashboardEntry, error) {
	var entries []report.DashboardEntry
	for _, k := range dataset.Kinds {
		tab, err := table.Load(cfg.DatasetDir(k), nil)
		if err != nil {
			var loadErr *dataset.LoadError
			if errors.As(err, &loadErr) {
				switch loadErr.Code {
				case dataset.ErrCodeDirNotFound:
					continue
				case dataset.ErrCodeNoFiles:
					entries = append(entries, report.DashboardEntry{Name: string(k), Metrics: profiling.ComputeMetrics(&table.Table{})})
					continue
				}
			}
			return nil, err
		}
		entries = append(entries, report.DashboardEntry{Name: string(k), Metrics: profiling.ComputeMetrics(tab)})
	}
	return entries, nil
}

func outputDashboardResult(formatter *OutputFormatter, entries []report.DashboardEntry, artifacts []string) error {
	result := DashboardResult{Artifacts: artifacts}
	for _, e := range entries {
		result.Datasets = append(result.Datasets, DashboardDataset{
			Name:        e.Name,
			Rows:        e.Metrics.Rows,
			MissingRate: e.Metrics.MissingRate,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compared %d dataset(s)\n", len(result.Datasets))
	for _, d := range result.Datasets {
		fmt.Fprintf(formatter.Writer, "  %s: %d rows\n", d.Name, d.Rows)
	}
	fmt.Fprintln(formatter.Writer, "  Artifacts:")
	for _, a := range artifacts {
		fmt.Fprintf(formatter.Writer, "    %s\n", a)
	}
	return nil
}
