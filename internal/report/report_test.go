package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/profiling"
)

func TestWriteRunArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	written, err := w.WriteRun(fixtureResults(), model.Default(), true)
	require.NoError(t, err)
	require.Len(t, written, 7)

	assert.Equal(t, filepath.Join(dir, ExecutiveReportFile), written[0])
	assert.Equal(t, filepath.Join(dir, InsightsFile), written[1])
	assert.Equal(t, filepath.Join(dir, ChartsDir, RiskMapChart), written[2])
	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestWriteRunSkipsCharts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	written, err := w.WriteRun(fixtureResults(), model.Default(), false)
	require.NoError(t, err)
	require.Len(t, written, 2)

	_, err = os.Stat(filepath.Join(dir, ChartsDir))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteRunInsightsJSON(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	_, err := w.WriteRun(fixtureResults(), model.Default(), false)
	require.NoError(t, err)

	blob, err := os.ReadFile(filepath.Join(dir, InsightsFile))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(blob, &got))

	run := got["run"].(map[string]any)
	assert.Equal(t, "run-0001", run["token"])
	assert.Equal(t, "2025-07-01T12:00:00Z", run["generated_at"])
	assert.Equal(t, "cers-default", run["model"])

	scores := got["scores"].([]any)
	require.Len(t, scores, 2)
	first := scores[0].(map[string]any)
	assert.Equal(t, "Araria", first["district"])
	assert.Equal(t, 76.25, first["cers"])

	econ := got["economics"].(map[string]any)
	assert.Equal(t, 6.1, econ["payback_months"])
}

func TestWriteInsightsArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	written, err := w.WriteInsights(fixtureProfiles())
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, InsightsMarkdown), written[0])
	assert.Equal(t, filepath.Join(dir, InsightsSummaryFile), written[1])

	md, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Executive Summary")
}

func TestWriteProfilesArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	profiles := []profiling.Profile{
		{
			Name: "biometric",
			Schema: profiling.Schema{
				Rows: 4, Cols: 1,
				SourceFiles: []string{"a.csv"},
				SampleFiles: []string{"a.csv"},
				Columns:     []profiling.ColumnSchema{{Name: "state", MissingRate: 0.25, Distinct: 2}},
			},
			Metrics: profiling.Metrics{Rows: 4, Cols: 1, Categorical: 1, MissingRate: 0.25},
		},
	}

	written, err := w.WriteProfiles(profiles, true)
	require.NoError(t, err)
	require.Len(t, written, 3)
	assert.Equal(t, filepath.Join(dir, ProfilesDir, "biometric", SchemaReportFile), written[0])
	assert.Equal(t, filepath.Join(dir, ProfilesDir, "biometric", ProfileFile), written[1])
	assert.Equal(t, filepath.Join(dir, ProfilesDir, "biometric", ColumnMissingChart), written[2])

	blob, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal(blob, &schema))
	assert.Equal(t, float64(4), schema["rows"])
	assert.Equal(t, []any{"a.csv"}, schema["sample_files"])

	blob, err = os.ReadFile(written[1])
	require.NoError(t, err)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(blob, &profile))
	assert.Equal(t, "biometric", profile["name"])
	assert.Nil(t, profile["outcome"])
}

func TestWriteDashboardArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	entries := []DashboardEntry{
		{Name: "enrolment", Metrics: profiling.Metrics{Rows: 1200, MissingRate: 0.04}},
		{Name: "biometric", Metrics: profiling.Metrics{Rows: 400, MissingRate: 0.01, HasSuccess: true, SuccessRate: 0.9}},
	}
	written, err := w.WriteDashboard(entries)
	require.NoError(t, err)
	require.Len(t, written, 4)
	assert.Equal(t, filepath.Join(dir, "index.html"), written[3])

	page, err := os.ReadFile(written[3])
	require.NoError(t, err)
	assert.Contains(t, string(page), "Success Rate by Dataset")
}
