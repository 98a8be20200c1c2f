package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/testutil"
)

func TestInsightsSampleData(t *testing.T) {
	dataRoot := testutil.SampleDataRoot(t)
	outDir := filepath.Join(t.TempDir(), "reports")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewInsightsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--out", outDir, dataRoot})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Profiled 3 dataset(s)")
	assert.Contains(t, output, "enrolment: 16 rows")

	assert.FileExists(t, filepath.Join(outDir, "INSIGHTS.md"))
	assert.FileExists(t, filepath.Join(outDir, "insights_summary.json"))
}

func TestInsightsSampleDataJSON(t *testing.T) {
	dataRoot := testutil.SampleDataRoot(t)
	outDir := filepath.Join(t.TempDir(), "reports")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewInsightsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--out", outDir, dataRoot})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	datasets, ok := data["datasets"].([]interface{})
	require.True(t, ok)
	assert.Len(t, datasets, 3)

	first, ok := datasets[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "enrolment", first["name"])
	assert.EqualValues(t, 2, first["states"])
	assert.Equal(t, "2025-03-30", first["date_min"])
	assert.Equal(t, "2025-04-02", first["date_max"])
}

func TestInsightsSkipsAbsentFolder(t *testing.T) {
	dataRoot := testutil.SampleDataRoot(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dataRoot, dataset.KindDemographic.DefaultFolder())))
	outDir := filepath.Join(t.TempDir(), "reports")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewInsightsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--out", outDir, dataRoot})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Profiled 2 dataset(s)")
}

func TestInsightsMissingDataDir(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewInsightsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--out", filepath.Join(t.TempDir(), "reports")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E503")
}
