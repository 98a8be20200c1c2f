package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenarioFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		base := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(base, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			// Golden files key off the name, so it must match the file.
			assert.Equal(t, base, scenario.Name)
			assert.NotEmpty(t, scenario.Description)
			assert.False(t, scenario.GeneratedAt.IsZero())
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "scenarios", "no_such.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario file")
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenarioFile(t, `name: typo
description: a misspelled expect key must not be silently dropped
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
expects:
  districts: 1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field expects not found")
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "valid minimal",
			content: `name: minimal
description: smallest scenario that loads
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
expect:
  districts: 1
`,
		},
		{
			name: "missing name",
			content: `description: no name
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
expect:
  districts: 1
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `name: no_description
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
expect:
  districts: 1
`,
			wantErr: "description is required",
		},
		{
			name: "missing run token",
			content: `name: no_token
description: runs are not reproducible without a pinned token
generated_at: 2025-06-01T08:00:00Z
expect:
  districts: 1
`,
			wantErr: "run_token is required",
		},
		{
			name: "missing generated at",
			content: `name: no_clock
description: runs are not reproducible without a frozen clock
run_token: tok-1
expect:
  districts: 1
`,
			wantErr: "generated_at is required",
		},
		{
			name: "unknown dataset kind",
			content: `name: bad_kind
description: only the three extract kinds may be staged
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
datasets:
  census: |
    date,state
expect:
  districts: 1
`,
			wantErr: `unknown extract kind "census"`,
		},
		{
			name: "no expectations",
			content: `name: checks_nothing
description: a scenario that asserts nothing is a mistake
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
`,
			wantErr: "expect or goldens is required",
		},
		{
			name: "error with goldens",
			content: `name: error_and_goldens
description: a failed run renders no artifacts to compare
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
expect:
  error: E101
goldens:
  - insights.json
`,
			wantErr: "expect.error cannot be combined with goldens",
		},
		{
			name: "error with outcome checks",
			content: `name: error_and_outcome
description: a failed run scores no districts to check
run_token: tok-1
generated_at: 2025-06-01T08:00:00Z
expect:
  error: E101
  districts: 2
`,
			wantErr: "expect.error cannot be combined with outcome expectations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenarioFile(t, tt.content))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
