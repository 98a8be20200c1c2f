package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML decoding. Charts is a pointer so an
// absent key is distinguishable from an explicit false.
type fileConfig struct {
	DataDir  string `yaml:"data_dir"`
	Datasets struct {
		Enrolment   string `yaml:"enrolment"`
		Demographic string `yaml:"demographic"`
		Biometric   string `yaml:"biometric"`
	} `yaml:"datasets"`
	OutDir    string `yaml:"out_dir"`
	ModelPath string `yaml:"model"`
	DBPath    string `yaml:"db"`
	Charts    *bool  `yaml:"charts"`
}

// Load reads a YAML configuration file and overlays it on the defaults.
// Unknown keys are rejected so a typo fails loudly instead of silently
// keeping the default. An empty file yields the defaults unchanged.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, cfgErr(ErrCodeRead, fmt.Errorf("reading config file: %w", err))
	}

	var f fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, cfgErr(ErrCodeParse, fmt.Errorf("parsing %s: %w", path, err))
	}

	cfg := Default()
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Datasets.Enrolment != "" {
		cfg.Datasets.Enrolment = f.Datasets.Enrolment
	}
	if f.Datasets.Demographic != "" {
		cfg.Datasets.Demographic = f.Datasets.Demographic
	}
	if f.Datasets.Biometric != "" {
		cfg.Datasets.Biometric = f.Datasets.Biometric
	}
	if f.OutDir != "" {
		cfg.OutDir = f.OutDir
	}
	if f.ModelPath != "" {
		cfg.ModelPath = f.ModelPath
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.Charts != nil {
		cfg.Charts = *f.Charts
	}
	return cfg, nil
}
