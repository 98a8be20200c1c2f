package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/enrolscan/internal/model"
)

// ValidationResult holds model validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Model  string                  `json:"model,omitempty"`
	Digest string                  `json:"digest,omitempty"`
	Errors []model.ValidationError `json:"errors,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ModelPath string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scoring model without running it",
		Long: `Compile a CUE scoring model and check it against the schema rules.

Checks weights, band thresholds, calendar months, pattern thresholds, and
the intervention and economics parameters without reading any extracts.
Faster than a scoring run for model development feedback.

Example:
  enrolscan validate --model cers.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ModelPath, "model", "", "path to a CUE model file (required)")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	m, err := model.LoadFile(opts.ModelPath)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Compiled model %q from %s", m.Name, opts.ModelPath)

	if verrs := model.Validate(m); len(verrs) > 0 {
		return outputModelErrors(formatter, verrs)
	}

	digest, err := m.Digest()
	if err != nil {
		return outputCommandError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Model: m.Name, Digest: digest})
	}

	fmt.Fprintf(formatter.Writer, "✓ Model %q valid\n", m.Name)
	fmt.Fprintf(formatter.Writer, "  digest %s\n", digest)
	return nil
}

// outputModelErrors renders schema validation failures. Validation
// failures exit with code 1, unlike command errors.
func outputModelErrors(formatter *OutputFormatter, errs []model.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("model validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Model validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
	}
	fmt.Fprintln(formatter.Writer)

	return NewExitError(ExitFailure, fmt.Sprintf("model validation failed with %d error(s)", len(errs)))
}
