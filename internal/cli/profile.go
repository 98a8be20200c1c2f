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

// ProfileOptions holds flags for the profile command.
type ProfileOptions struct {
	*RootOptions
	RunSettings
}

// ProfileResult is the JSON payload of a successful profile run.
type ProfileResult struct {
	Datasets  []ProfileEntry `json:"datasets"`
	Artifacts []string       `json:"artifacts"`
}

// ProfileEntry is one dataset's schema headline.
type ProfileEntry struct {
	Name       string  `json:"name"`
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	Files      int     `json:"files"`
	Missing    float64 `json:"missing_rate"`
	HasOutcome bool    `json:"has_outcome"`
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profile [data-dir]",
		Short: "Write schema reports for each extract",
		Long: `Profile the schema of each extract folder.

Sniffs every CSV into a generic table, infers column kinds and roles, and
writes a schema report plus a profile summary per dataset. When a label
column is present the outcome analysis is included.

Example:
  enrolscan profile ./data
  enrolscan profile --charts=false ./data`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.DataDir = args[0]
			}
			return runProfile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "reports", "directory for report artifacts")
	cmd.Flags().BoolVar(&opts.Charts, "charts", true, "render HTML chart pages")

	return cmd
}

func runProfile(opts *ProfileOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.Verbose)

	cfg, err := BuildConfig(cmd, opts.RunSettings)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	profiles, err := collectProfiles(cfg)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Profiled %d dataset(s) under %s", len(profiles), cfg.DataDir)

	writer := report.NewWriter(cfg.OutDir, nil)
	artifacts, err := writer.WriteProfiles(profiles, cfg.Charts)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	return outputProfileResult(formatter, profiles, artifacts)
}

// collectProfiles analyzes each extract folder with the same tolerance as
// the insight collector: absent folders are skipped, fileless folders
// profile as empty, anything else aborts.
func collectProfiles(cfg config.Config) ([]profiling.Profile, error) {
	var profiles []profiling.Profile
	for _, k := range dataset.Kinds {
		tab, err := table.Load(cfg.DatasetDir(k), nil)
		if err != nil {
			var loadErr *dataset.LoadError
			if errors.As(err, &loadErr) {
				switch loadErr.Code {
				case dataset.ErrCodeDirNotFound:
					continue
				case dataset.ErrCodeNoFiles:
					profiles = append(profiles, profiling.Analyze(string(k), &table.Table{}))
					continue
				}
			}
			return nil, err
		}
		profiles = append(profiles, profiling.Analyze(string(k), tab))
	}
	return profiles, nil
}

func outputProfileResult(formatter *OutputFormatter, profiles []profiling.Profile, artifacts []string) error {
	result := ProfileResult{Artifacts: artifacts}
	for i := range profiles {
		p := &profiles[i]
		result.Datasets = append(result.Datasets, ProfileEntry{
			Name:       p.Name,
			Rows:       p.Schema.Rows,
			Cols:       p.Schema.Cols,
			Files:      len(p.Schema.SourceFiles),
			Missing:    p.Metrics.MissingRate,
			HasOutcome: p.Outcome != nil,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Profiled %d dataset(s)\n", len(result.Datasets))
	for _, e := range result.Datasets {
		fmt.Fprintf(formatter.Writer, "  %s: %d rows x %d cols from %d file(s)\n", e.Name, e.Rows, e.Cols, e.Files)
	}
	fmt.Fprintln(formatter.Writer, "  Artifacts:")
	for _, a := range artifacts {
		fmt.Fprintf(formatter.Writer, "    %s\n", a)
	}
	return nil
}
