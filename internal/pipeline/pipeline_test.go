package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/model"
)

func writeFixtures(t *testing.T, root string) Inputs {
	t.Helper()
	write := func(dir, name, content string) {
		path := filepath.Join(root, dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("enrolment", "e.csv",
		"date,state,district,pincode,age_0_5,age_5_17,age_18_greater\n"+
			"31-03-2025,Bihar,Araria,854311,10,30,60\n"+
			"31-03-2025,Bihar,Gaya,823001,5,20,75\n")
	write("demographic", "d.csv",
		"date,state,district,pincode,demo_age_5_17,demo_age_17_\n"+
			"31-03-2025,Bihar,Araria,854311,5,20\n"+
			"31-03-2025,Bihar,Gaya,823001,10,40\n")
	// Araria ships no biometric rows at all, which pushes it into the top
	// band and exercises the intervention path.
	write("biometric", "b.csv",
		"date,state,district,pincode,bio_age_5_17,bio_age_17_\n"+
			"31-03-2025,Bihar,Gaya,823001,15,55\n")

	return Inputs{
		EnrolmentDir:   filepath.Join(root, "enrolment"),
		DemographicDir: filepath.Join(root, "demographic"),
		BiometricDir:   filepath.Join(root, "biometric"),
	}
}

func TestRunCollectsResults(t *testing.T) {
	in := writeFixtures(t, t.TempDir())
	m := model.Default()

	p := New(in, m, nil, NewFixedGenerator("run-0001"))
	fixed := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return fixed })

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-0001", res.Meta.RunToken)
	assert.Equal(t, fixed, res.Meta.GeneratedAt)
	assert.Len(t, res.Meta.InputsFingerprint, 64)

	digest, err := m.Digest()
	require.NoError(t, err)
	assert.Equal(t, digest, res.Meta.ModelDigest)

	require.Len(t, res.Inputs, 3)
	assert.Equal(t, dataset.KindEnrolment, res.Inputs[0].Kind)
	assert.Equal(t, 2, res.Inputs[0].Rows)
	assert.Equal(t, 1, res.Inputs[0].Files)
	assert.Zero(t, res.Inputs[0].Skipped)

	assert.Len(t, res.Frame, 2)
	assert.Len(t, res.Scores, 2)
	assert.Equal(t, 2, res.Summary.TotalDistricts)
	assert.NotEmpty(t, res.Plan.Vans.Routes)
	assert.GreaterOrEqual(t, res.Economics.TotalInterventionCost, 0.0)
}

func TestRunFingerprintIgnoresDataRoot(t *testing.T) {
	inA := writeFixtures(t, t.TempDir())
	inB := writeFixtures(t, t.TempDir())
	m := model.Default()

	resA, err := New(inA, m, nil, NewFixedGenerator("a")).Run(context.Background())
	require.NoError(t, err)
	resB, err := New(inB, m, nil, NewFixedGenerator("b")).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, resA.Meta.InputsFingerprint, resB.Meta.InputsFingerprint)
}

func TestRunWrapsLoadFailure(t *testing.T) {
	in := writeFixtures(t, t.TempDir())
	in.BiometricDir = filepath.Join(t.TempDir(), "absent")

	_, err := New(in, model.Default(), nil, NewFixedGenerator("x")).Run(context.Background())
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageLoad, stageErr.Stage)
	assert.Equal(t, "E301", stageErr.Code)

	var loadErr *dataset.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, dataset.ErrCodeDirNotFound, loadErr.Code)
}

func TestRunHonorsCancellation(t *testing.T) {
	in := writeFixtures(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(in, model.Default(), nil, NewFixedGenerator("x")).Run(ctx)
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageLoad, stageErr.Stage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("one", "two")
	assert.Equal(t, "one", gen.Generate())
	assert.Equal(t, "two", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
