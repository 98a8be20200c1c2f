package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/enrolscan/internal/dataset"
)

// Scenario describes one pipeline run end to end: the extracts to stage,
// the model to score them with, and what the run must produce. Scenarios
// live in YAML so the whole contract reads without touching Go code.
type Scenario struct {
	// Name uniquely identifies the scenario and prefixes its golden files.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// RunToken is the fixed token stamped into run metadata so rendered
	// artifacts are byte-stable.
	RunToken string `yaml:"run_token"`

	// GeneratedAt is the frozen clock reading for the run.
	GeneratedAt time.Time `yaml:"generated_at"`

	// Datasets maps extract kind (enrolment, demographic, biometric) to
	// inline CSV content. A kind left out is not written at all, which is
	// how missing-extract failures are staged.
	Datasets map[string]string `yaml:"datasets,omitempty"`

	// Model is inline CUE source for the scoring model. Empty selects the
	// default model.
	Model string `yaml:"model,omitempty"`

	// Expect lists the outcome checks evaluated into the Result.
	Expect *Expectations `yaml:"expect,omitempty"`

	// Goldens names rendered artifacts to compare against golden files:
	// executive_report.md, insights.json.
	Goldens []string `yaml:"goldens,omitempty"`
}

// Expectations are the outcome checks a scenario can declare. Nil and
// zero-value fields are not evaluated, so each scenario asserts only what
// it is about.
type Expectations struct {
	// Error expects the run to fail with this dataset load code, for
	// example E101 for a missing extract directory. When set, no other
	// expectation or golden may be declared.
	Error string `yaml:"error,omitempty"`

	// Districts is the expected number of scored districts.
	Districts *int `yaml:"districts,omitempty"`

	// TopDistrict and TopBand check the highest-scoring district.
	TopDistrict string `yaml:"top_district,omitempty"`
	TopBand     string `yaml:"top_band,omitempty"`

	// Bands is a subset match over the summary band counts.
	Bands map[string]int `yaml:"bands,omitempty"`

	// QuarterEndSignificant checks the quarter-end completion test verdict.
	QuarterEndSignificant *bool `yaml:"quarter_end_significant,omitempty"`

	// Hotspots is the expected migration hotspot count.
	Hotspots *int `yaml:"hotspots,omitempty"`

	// VansNeeded and AlertDistricts check the intervention plan.
	VansNeeded     *int `yaml:"vans_needed,omitempty"`
	AlertDistricts *int `yaml:"alert_districts,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo like "expects:" fails loudly instead of silently
// skipping its checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and the expectation rules.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.RunToken == "" {
		return fmt.Errorf("run_token is required")
	}
	if s.GeneratedAt.IsZero() {
		return fmt.Errorf("generated_at is required")
	}

	valid := make(map[string]bool, len(dataset.Kinds))
	for _, k := range dataset.Kinds {
		valid[string(k)] = true
	}
	for kind := range s.Datasets {
		if !valid[kind] {
			return fmt.Errorf("datasets: unknown extract kind %q", kind)
		}
	}

	if s.Expect == nil && len(s.Goldens) == 0 {
		return fmt.Errorf("expect or goldens is required")
	}
	if s.Expect != nil {
		if err := validateExpectations(s.Expect, len(s.Goldens) > 0); err != nil {
			return err
		}
	}
	return nil
}

// validateExpectations enforces that an error expectation stands alone: a
// failed run renders no artifacts and scores no districts, so combining it
// with outcome checks or goldens can never pass.
func validateExpectations(e *Expectations, hasGoldens bool) error {
	if e.Error == "" {
		return nil
	}
	if hasGoldens {
		return fmt.Errorf("expect.error cannot be combined with goldens")
	}
	if e.Districts != nil || e.TopDistrict != "" || e.TopBand != "" ||
		len(e.Bands) > 0 || e.QuarterEndSignificant != nil ||
		e.Hotspots != nil || e.VansNeeded != nil || e.AlertDistricts != nil {
		return fmt.Errorf("expect.error cannot be combined with outcome expectations")
	}
	return nil
}
