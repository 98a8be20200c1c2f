// Package testutil holds shared fixtures for pipeline, CLI, and harness
// tests: canned extract CSVs, data-root builders, and the frozen clock and
// token that keep rendered artifacts byte-stable.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/dataset"
)

// Canned extracts describing two districts over four days spanning a
// quarter boundary. Patna runs half-complete on updates; Kochi is fully
// caught up. The shapes are chosen so every derived figure lands on a
// clean decimal.
const (
	SampleEnrolment = `date,state,district,pincode,age_0_5,age_5_17,age_18_greater
30-03-2025,Bihar,Patna,800001,20,30,50
30-03-2025,Bihar,Patna,800002,10,20,20
30-03-2025,Kerala,Kochi,682001,10,15,25
30-03-2025,Kerala,Kochi,682002,10,15,25
31-03-2025,Bihar,Patna,800001,20,30,50
31-03-2025,Bihar,Patna,800002,10,20,20
31-03-2025,Kerala,Kochi,682001,10,15,25
31-03-2025,Kerala,Kochi,682002,10,15,25
01-04-2025,Bihar,Patna,800001,20,30,50
01-04-2025,Bihar,Patna,800002,10,20,20
01-04-2025,Kerala,Kochi,682001,10,15,25
01-04-2025,Kerala,Kochi,682002,10,15,25
02-04-2025,Bihar,Patna,800001,20,30,50
02-04-2025,Bihar,Patna,800002,10,20,20
02-04-2025,Kerala,Kochi,682001,10,15,25
02-04-2025,Kerala,Kochi,682002,10,15,25
`

	SampleDemographic = `date,state,district,pincode,demo_age_5_17,demo_age_17_
30-03-2025,Bihar,Patna,800001,10,30
30-03-2025,Kerala,Kochi,682001,9,21
30-03-2025,Kerala,Kochi,682002,9,21
31-03-2025,Bihar,Patna,800001,10,30
31-03-2025,Kerala,Kochi,682001,9,21
31-03-2025,Kerala,Kochi,682002,9,21
01-04-2025,Bihar,Patna,800001,10,30
01-04-2025,Kerala,Kochi,682001,9,21
01-04-2025,Kerala,Kochi,682002,9,21
02-04-2025,Bihar,Patna,800001,10,30
02-04-2025,Kerala,Kochi,682001,9,21
02-04-2025,Kerala,Kochi,682002,9,21
`

	SampleBiometric = `date,state,district,pincode,bio_age_5_17,bio_age_17_
30-03-2025,Bihar,Patna,800001,5,20
30-03-2025,Kerala,Kochi,682001,9,21
30-03-2025,Kerala,Kochi,682002,9,21
31-03-2025,Bihar,Patna,800001,5,20
31-03-2025,Kerala,Kochi,682001,9,21
31-03-2025,Kerala,Kochi,682002,9,21
01-04-2025,Bihar,Patna,800001,5,20
01-04-2025,Kerala,Kochi,682001,9,21
01-04-2025,Kerala,Kochi,682002,9,21
02-04-2025,Bihar,Patna,800001,5,20
02-04-2025,Kerala,Kochi,682001,9,21
02-04-2025,Kerala,Kochi,682002,9,21
`
)

// WriteExtract writes one CSV into dir, creating the directory if needed,
// and returns the file path.
func WriteExtract(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// DataRoot lays out a conventional extract drop under a fresh temp
// directory: one folder per kind, one CSV per folder. Returns the root.
func DataRoot(t *testing.T, enrolment, demographic, biometric string) string {
	t.Helper()
	root := t.TempDir()
	WriteExtract(t, filepath.Join(root, dataset.KindEnrolment.DefaultFolder()), "enrolment.csv", enrolment)
	WriteExtract(t, filepath.Join(root, dataset.KindDemographic.DefaultFolder()), "demographic.csv", demographic)
	WriteExtract(t, filepath.Join(root, dataset.KindBiometric.DefaultFolder()), "biometric.csv", biometric)
	return root
}

// SampleDataRoot is DataRoot over the canned two-district extracts.
func SampleDataRoot(t *testing.T) string {
	t.Helper()
	return DataRoot(t, SampleEnrolment, SampleDemographic, SampleBiometric)
}
