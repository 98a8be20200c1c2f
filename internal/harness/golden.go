package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares each declared artifact
// against its golden file. Golden names compose the scenario name with the
// artifact name:
//
//	testdata/golden/{scenario}.{artifact}.golden
//
// Regenerate after an intentional output change with:
//
//	go test ./internal/harness -update
//
// The returned error covers execution problems; content mismatches fail
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if result.RunErr != nil {
		return result, fmt.Errorf("scenario run failed: %w", result.RunErr)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, name := range scenario.Goldens {
		blob, ok := result.Artifacts[name]
		if !ok {
			return result, fmt.Errorf("scenario declares a golden for unrendered artifact %q", name)
		}
		g.Assert(t, scenario.Name+"."+name, blob)
	}
	return result, nil
}
