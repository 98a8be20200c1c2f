package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/dataset"
)

func TestSampleDataRootLoads(t *testing.T) {
	root := SampleDataRoot(t)

	for _, k := range dataset.Kinds {
		ds, err := dataset.Load(filepath.Join(root, k.DefaultFolder()), k, nil)
		require.NoError(t, err, "kind %s", k)
		assert.NotEmpty(t, ds.Rows)
		assert.Zero(t, ds.Skipped, "canned extracts must parse cleanly")
	}
}

func TestSampleExtractShapes(t *testing.T) {
	root := SampleDataRoot(t)

	enrol, err := dataset.Load(filepath.Join(root, dataset.KindEnrolment.DefaultFolder()), dataset.KindEnrolment, nil)
	require.NoError(t, err)

	// Four days, two districts, two pincode rows each.
	assert.Len(t, enrol.Rows, 16)

	states := map[string]bool{}
	for _, r := range enrol.Rows {
		states[r.State] = true
	}
	assert.Equal(t, map[string]bool{"Bihar": true, "Kerala": true}, states)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)
	clock := FixedClock(at)

	assert.Equal(t, at, clock())
	assert.Equal(t, at, clock(), "clock must not advance")
	assert.Equal(t, RunStamp, Clock()())
}

func TestRunTokenShape(t *testing.T) {
	parsed, err := uuid.Parse(RunToken)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
