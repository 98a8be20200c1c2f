package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/export"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/report"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	RunSettings

	// TokenGenerator overrides run-token generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator pipeline.TokenGenerator

	// Clock overrides the generated-at timestamp (for testing).
	Clock func() time.Time
}

// ScoreResult is the JSON payload of a successful score run.
type ScoreResult struct {
	RunToken          string          `json:"run_token"`
	GeneratedAt       string          `json:"generated_at"`
	InputsFingerprint string          `json:"inputs_fingerprint"`
	ModelDigest       string          `json:"model_digest"`
	Districts         int             `json:"districts"`
	MeanScore         float64         `json:"mean_score"`
	TopDistricts      []ScoreTopEntry `json:"top_districts"`
	Artifacts         []string        `json:"artifacts"`
	Database          string          `json:"database,omitempty"`
}

// ScoreTopEntry is one leading district in the score summary.
type ScoreTopEntry struct {
	State    string  `json:"state"`
	District string  `json:"district"`
	Score    float64 `json:"score"`
	Band     string  `json:"band"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score [data-dir]",
		Short: "Score districts from one set of extracts",
		Long: `Run the full scoring pipeline over one set of extracts.

Loads the enrolment, demographic, and biometric CSV extracts under the data
directory, scores every district with the composite exclusion-risk model,
and writes the report artifacts. With --db the scored run also lands in a
SQLite results database.

Example:
  enrolscan score ./data
  enrolscan score --model cers.cue --out ./reports --db runs.db ./data`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.DataDir = args[0]
			}
			return runScore(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "reports", "directory for report artifacts")
	cmd.Flags().StringVar(&opts.ModelPath, "model", "", "path to a CUE model file (default: embedded model)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to a SQLite results database")
	cmd.Flags().BoolVar(&opts.Charts, "charts", true, "render HTML chart pages")

	return cmd
}

func runScore(opts *ScoreOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.Verbose)

	cfg, err := BuildConfig(cmd, opts.RunSettings)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	m, err := LoadModel(cfg)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	if verrs := model.Validate(m); len(verrs) > 0 {
		return outputModelErrors(formatter, verrs)
	}

	in := pipeline.Inputs{
		EnrolmentDir:   cfg.DatasetDir(dataset.KindEnrolment),
		DemographicDir: cfg.DatasetDir(dataset.KindDemographic),
		BiometricDir:   cfg.DatasetDir(dataset.KindBiometric),
	}
	p := pipeline.New(in, m, nil, opts.TokenGenerator)
	if opts.Clock != nil {
		p.SetClock(opts.Clock)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	slog.Info("scoring run starting", "data_dir", cfg.DataDir, "model", m.Name)
	res, err := p.Run(ctx)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	writer := report.NewWriter(cfg.OutDir, nil)
	artifacts, err := writer.WriteRun(res, m, cfg.Charts)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	if cfg.DBPath != "" {
		if err := exportRun(ctx, cfg.DBPath, res, m); err != nil {
			return outputCommandError(formatter, err)
		}
	}

	return outputScoreResult(formatter, res, artifacts, cfg.DBPath)
}

// exportRun persists one scored run to the results database.
func exportRun(ctx context.Context, path string, res *pipeline.Results, m *model.Model) error {
	st, err := export.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing results database", "error", closeErr)
		}
	}()
	return st.WriteResults(ctx, res, m)
}

// outputScoreResult renders the run summary in the configured format.
func outputScoreResult(formatter *OutputFormatter, res *pipeline.Results, artifacts []string, dbPath string) error {
	result := ScoreResult{
		RunToken:          res.Meta.RunToken,
		GeneratedAt:       res.Meta.GeneratedAt.Format(time.RFC3339),
		InputsFingerprint: res.Meta.InputsFingerprint,
		ModelDigest:       res.Meta.ModelDigest,
		Districts:         res.Summary.TotalDistricts,
		MeanScore:         res.Summary.AvgCERS,
		Artifacts:         artifacts,
		Database:          dbPath,
	}
	for _, d := range res.Summary.Top {
		result.TopDistricts = append(result.TopDistricts, ScoreTopEntry{
			State:    d.State,
			District: d.District,
			Score:    d.CERS,
			Band:     d.Band,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Scored %d district(s)\n", result.Districts)
	fmt.Fprintf(formatter.Writer, "  run %s at %s\n", result.RunToken, result.GeneratedAt)
	if len(result.TopDistricts) > 0 {
		fmt.Fprintln(formatter.Writer, "  Top districts:")
		for i, d := range result.TopDistricts {
			fmt.Fprintf(formatter.Writer, "    %d. %s, %s: %.2f (%s)\n", i+1, d.District, d.State, d.Score, d.Band)
		}
	}
	fmt.Fprintln(formatter.Writer, "  Artifacts:")
	for _, a := range artifacts {
		fmt.Fprintf(formatter.Writer, "    %s\n", a)
	}
	if dbPath != "" {
		fmt.Fprintf(formatter.Writer, "  Results database: %s\n", dbPath)
	}
	return nil
}
