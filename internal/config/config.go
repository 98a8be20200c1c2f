// Package config loads run configuration. Settings come from three layers
// in rising precedence: built-in defaults, an optional YAML file, and
// command-line flags applied by the caller.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/enrolscan/internal/dataset"
)

// Config error codes.
const (
	ErrCodeRead    = "E501"
	ErrCodeParse   = "E502"
	ErrCodeInvalid = "E503"
)

// Error wraps a configuration failure with a stable code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] config: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func cfgErr(code string, err error) error {
	return &Error{Code: code, Err: err}
}

// Datasets maps extract kinds to folder names under the data directory.
type Datasets struct {
	Enrolment   string
	Demographic string
	Biometric   string
}

// FolderFor returns the configured folder for an extract kind.
func (d Datasets) FolderFor(k dataset.Kind) string {
	switch k {
	case dataset.KindEnrolment:
		return d.Enrolment
	case dataset.KindDemographic:
		return d.Demographic
	case dataset.KindBiometric:
		return d.Biometric
	default:
		return ""
	}
}

// Config is one run's effective configuration after all layers merged.
type Config struct {
	DataDir   string
	Datasets  Datasets
	OutDir    string
	ModelPath string
	DBPath    string
	Charts    bool
}

// Default returns the built-in configuration: conventional extract folder
// names, reports/ for output, charts on.
func Default() Config {
	return Config{
		Datasets: Datasets{
			Enrolment:   dataset.KindEnrolment.DefaultFolder(),
			Demographic: dataset.KindDemographic.DefaultFolder(),
			Biometric:   dataset.KindBiometric.DefaultFolder(),
		},
		OutDir: "reports",
		Charts: true,
	}
}

// Validate checks the merged configuration. Dataset folders must be plain
// names relative to the data directory; anything that could escape it is
// rejected.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return cfgErr(ErrCodeInvalid, fmt.Errorf("data directory must be set"))
	}
	if strings.TrimSpace(c.OutDir) == "" {
		return cfgErr(ErrCodeInvalid, fmt.Errorf("output directory must be set"))
	}
	for _, k := range dataset.Kinds {
		folder := c.Datasets.FolderFor(k)
		if strings.TrimSpace(folder) == "" {
			return cfgErr(ErrCodeInvalid, fmt.Errorf("%s folder must be set", k))
		}
		if filepath.IsAbs(folder) || strings.Contains(folder, "..") {
			return cfgErr(ErrCodeInvalid, fmt.Errorf("%s folder %q must be a plain name under the data directory", k, folder))
		}
	}
	return nil
}

// DatasetDir returns the absolute-or-relative path of a kind's folder.
func (c *Config) DatasetDir(k dataset.Kind) string {
	return filepath.Join(c.DataDir, c.Datasets.FolderFor(k))
}
