package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/enrolscan/internal/config"
	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/export"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
)

// CLI-level error codes. Errors from the internal packages carry their own
// codes (E1xx datasets, E2xx model, E3xx pipeline, E4xx store, E5xx config);
// these cover what falls through.
const (
	ErrCodeGeneric      = "E001" // unknown error
	ErrCodeModelCompile = "E002" // model file failed to compile
)

// RunSettings collects the flag values shared by the extract-reading
// commands before they merge into one configuration.
type RunSettings struct {
	ConfigPath string
	DataDir    string // positional argument, may be empty
	OutDir     string
	ModelPath  string
	DBPath     string
	Charts     bool
}

// BuildConfig merges the three configuration layers: built-in defaults,
// then the optional YAML file, then explicit flags. A flag only overrides
// when the user set it, so file values survive untouched flag defaults.
func BuildConfig(cmd *cobra.Command, s RunSettings) (config.Config, error) {
	cfg := config.Default()
	if s.ConfigPath != "" {
		loaded, err := config.Load(s.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if s.DataDir != "" {
		cfg.DataDir = s.DataDir
	}
	if flags.Changed("out") {
		cfg.OutDir = s.OutDir
	}
	if flags.Changed("model") {
		cfg.ModelPath = s.ModelPath
	}
	if flags.Changed("db") {
		cfg.DBPath = s.DBPath
	}
	if flags.Changed("charts") {
		cfg.Charts = s.Charts
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// LoadModel compiles the model the configuration names, falling back to
// the embedded default when no path is configured.
func LoadModel(cfg config.Config) (*model.Model, error) {
	if cfg.ModelPath == "" {
		return model.Default(), nil
	}
	return model.LoadFile(cfg.ModelPath)
}

// outputCommandError renders a coded error and converts it to a
// command-level exit (exit code 2).
func outputCommandError(formatter *OutputFormatter, err error) error {
	code := ErrorCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// ErrorCode extracts the stable code an error carries. Codes from wrapped
// errors win over the stage wrapper's own code, so a missing extract
// surfaces as E101 rather than the load stage's E301.
func ErrorCode(err error) string {
	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	var storeErr *export.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	var compileErr *model.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeModelCompile
	}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Code
	}
	return ErrCodeGeneric
}
