package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// NewRootCommand builds the enrolscan command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "enrolscan",
		Short: "Enrolment extract scanner",
		Long: "enrolscan runs batch analytics over identity-enrolment CSV extracts. " +
			"It scores district risk with a CUE-configured model and renders the " +
			"results as report artifacts.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.Format {
			case "text", "json":
				return nil
			default:
				return fmt.Errorf("invalid format %q: must be one of [text json]", opts.Format)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main prints errors once, with the exit code mapped
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	for _, sub := range []*cobra.Command{
		NewScoreCommand(opts),
		NewInsightsCommand(opts),
		NewProfileCommand(opts),
		NewDashboardCommand(opts),
		NewValidateCommand(opts),
	} {
		cmd.AddCommand(sub)
	}

	return cmd
}

// newFormatter wires a formatter to the command's streams: results on
// stdout, verbose diagnostics on stderr.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// setupLogging installs the default slog handler at the level --verbose
// asks for.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
