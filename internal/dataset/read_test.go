package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExtract writes a CSV fixture under dir, creating parents.
func writeExtract(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEnrolment(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "a.csv",
		"date,state,district,pincode,age_0_5,age_5_17,age_18_greater\n"+
			"01-03-2025,MAHARASHTRA,PUNE,411001,5,40,120\n"+
			"02-03-2025,Maharashtra,Pune,411002,3,22,90\n"+
			"bad-date,Maharashtra,Pune,411003,1,1,1\n")

	ds, err := Load(dir, KindEnrolment, nil)
	require.NoError(t, err)

	assert.Equal(t, KindEnrolment, ds.Kind)
	assert.Len(t, ds.Rows, 2)
	assert.Equal(t, 1, ds.Skipped)
	assert.Len(t, ds.Sources, 1)

	first := ds.Rows[0]
	assert.Equal(t, Date{2025, time.March, 1}, first.Day)
	assert.Equal(t, "Maharashtra", first.State)
	assert.Equal(t, "Pune", first.District)
	assert.Equal(t, "411001", first.Pincode)
	assert.Equal(t, int64(5), first.AgeUnder5)
	assert.Equal(t, int64(40), first.AgeYouth)
	assert.Equal(t, int64(120), first.AgeAdult)
}

// TestLoadMergesFilesRecursively checks subdirectories are discovered and
// rows from every file land in one dataset, sorted by file path.
func TestLoadMergesFilesRecursively(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "2025/march.csv",
		"date,state,district,pincode,demo_age_5_17,demo_age_17_\n"+
			"01-03-2025,Bihar,Patna,800001,10,55\n")
	writeExtract(t, dir, "april.csv",
		"date,state,district,pincode,demo_age_5_17,demo_age_17_\n"+
			"01-04-2025,Bihar,Patna,800001,12,60\n")

	ds, err := Load(dir, KindDemographic, nil)
	require.NoError(t, err)

	require.Len(t, ds.Rows, 2)
	// Discovery sorts paths; "2025/march.csv" precedes "april.csv".
	assert.Equal(t, Date{2025, time.March, 1}, ds.Rows[0].Day)
	assert.Equal(t, Date{2025, time.April, 1}, ds.Rows[1].Day)
}

func TestLoadPipeSeparatedWithGroupedCounts(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "b.csv",
		"date|state|district|pincode|bio_age_5_17|bio_age_17_\n"+
			"15-10-2024|Bihar|Patna|800001|1,234|5,678\n")

	ds, err := Load(dir, KindBiometric, nil)
	require.NoError(t, err)

	require.Len(t, ds.Rows, 1)
	assert.Equal(t, int64(1234), ds.Rows[0].AgeYouth)
	assert.Equal(t, int64(5678), ds.Rows[0].AgeAdult)
}

func TestLoadBlankCountsAreZero(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "c.csv",
		"date,state,district,pincode,bio_age_5_17,bio_age_17_\n"+
			"15-10-2024,Bihar,Patna,800001,,\n")

	ds, err := Load(dir, KindBiometric, nil)
	require.NoError(t, err)

	require.Len(t, ds.Rows, 1)
	assert.Equal(t, int64(0), ds.Rows[0].AgeYouth)
	assert.Equal(t, int64(0), ds.Rows[0].AgeAdult)
}

func TestLoadSkipsRowsWithoutGeography(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "d.csv",
		"date,state,district,pincode,bio_age_5_17,bio_age_17_\n"+
			"15-10-2024,,Patna,800001,1,2\n"+
			"15-10-2024,Bihar,Patna,800001,1,2\n")

	ds, err := Load(dir, KindBiometric, nil)
	require.NoError(t, err)

	assert.Len(t, ds.Rows, 1)
	assert.Equal(t, 1, ds.Skipped)
}

func TestLoadMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "e.csv",
		"date,state,district,pincode,demo_age_5_17\n"+
			"01-03-2025,Bihar,Patna,800001,10\n")

	_, err := Load(dir, KindDemographic, nil)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeMissingColumn, loadErr.Code)
	assert.Contains(t, loadErr.Message, "demo_age_17_")
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"), KindEnrolment, nil)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeDirNotFound, loadErr.Code)
}

func TestLoadNoCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "notes.txt", "not a csv")

	_, err := Load(dir, KindEnrolment, nil)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadAllRowsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "f.csv",
		"date,state,district,pincode,age_0_5,age_5_17,age_18_greater\n"+
			"nope,Bihar,Patna,800001,1,2,3\n")

	_, err := Load(dir, KindEnrolment, nil)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeEmptyDataset, loadErr.Code)
}

func TestDetectSeparator(t *testing.T) {
	dir := t.TempDir()

	comma := writeExtract(t, dir, "comma.csv", "date,state\n")
	pipe := writeExtract(t, dir, "pipe.csv", "date|state\n")
	tab := writeExtract(t, dir, "tab.csv", "date\tstate\n")

	sep, err := DetectSeparator(comma)
	require.NoError(t, err)
	assert.Equal(t, ',', sep)

	sep, err = DetectSeparator(pipe)
	require.NoError(t, err)
	assert.Equal(t, '|', sep)

	sep, err = DetectSeparator(tab)
	require.NoError(t, err)
	assert.Equal(t, '\t', sep)
}
