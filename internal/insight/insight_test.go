package insight

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/table"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func loadFixture(t *testing.T, content string) *table.Table {
	t.Helper()
	dir := t.TempDir()
	writeCSV(t, dir, "extract.csv", content)
	tab, err := table.Load(dir, nil)
	require.NoError(t, err)
	return tab
}

func TestProfileKPIs(t *testing.T) {
	tab := loadFixture(t,
		"enrolment_date,state,district,qty\n"+
			"15-03-2025,Bihar,Patna,5\n"+
			"16-03-2025,Bihar,Gaya,7\n"+
			"16-03-2025,UP,Varanasi,9\n"+
			",UP,Varanasi,\n")

	p := Profile("enrolment", tab)
	assert.Equal(t, "enrolment", p.Name)
	assert.Equal(t, []string{"enrolment_date", "state", "district", "qty"}, p.Columns)

	k := p.KPIs
	assert.Equal(t, 4, k.Rows)
	assert.Equal(t, 4, k.Cols)
	assert.InDelta(t, 0.125, k.MissingRate, 1e-12)
	assert.Equal(t, "enrolment_date", k.DatetimeCol)
	assert.Equal(t, "state", k.StateCol)
	assert.Equal(t, "district", k.DistrictCol)
	assert.True(t, k.HasDates)
	assert.Equal(t, dataset.Date{Year: 2025, Month: time.March, Day: 15}, k.DateMin)
	assert.Equal(t, dataset.Date{Year: 2025, Month: time.March, Day: 16}, k.DateMax)
	assert.Equal(t, 2, k.States)
	assert.Equal(t, 3, k.Districts)

	assert.Equal(t, []StateShare{
		{State: "Bihar", Share: 0.5},
		{State: "UP", Share: 0.5},
	}, p.StateShares)

	assert.Equal(t, []table.DayCount{
		{Day: dataset.Date{Year: 2025, Month: time.March, Day: 15}, Count: 1},
		{Day: dataset.Date{Year: 2025, Month: time.March, Day: 16}, Count: 2},
	}, p.DailyVolume)

	vol, ok := p.Volatility()
	require.True(t, ok)
	assert.InDelta(t, 0.4714, vol, 1e-4)
}

func TestProfileEmptyTable(t *testing.T) {
	p := Profile("biometric", &table.Table{})

	assert.Equal(t, 0, p.KPIs.Rows)
	assert.Equal(t, 0, p.KPIs.Cols)
	assert.Equal(t, 1.0, p.KPIs.MissingRate)
	assert.False(t, p.KPIs.HasDates)
	assert.Empty(t, p.StateShares)
	assert.Empty(t, p.DailyVolume)

	_, ok := p.Volatility()
	assert.False(t, ok)
}

func TestProfileNoDateColumn(t *testing.T) {
	tab := loadFixture(t, "state,qty\nBihar,1\nBihar,2\n")

	p := Profile("demographic", tab)
	assert.Empty(t, p.KPIs.DatetimeCol)
	assert.False(t, p.KPIs.HasDates)
	assert.Empty(t, p.DailyVolume)
	assert.Equal(t, 0, p.KPIs.Districts)
}

func TestVolatilityFloorsMean(t *testing.T) {
	p := DatasetProfile{DailyVolume: []table.DayCount{
		{Count: 0},
		{Count: 1},
	}}

	// Mean 0.5 floors to 1, so the ratio equals the std itself.
	vol, ok := p.Volatility()
	require.True(t, ok)
	assert.InDelta(t, 0.70711, vol, 1e-5)
}

func TestUnderRepresented(t *testing.T) {
	enrol := []StateShare{
		{State: "Assam", Share: 0.5},
		{State: "Bihar", Share: 0.3},
		{State: "Kerala", Share: 0.2},
	}
	bio := []StateShare{
		{State: "Assam", Share: 0.6},
		{State: "Kerala", Share: 0.1},
	}

	deltas := UnderRepresented(enrol, bio, 2)
	require.Len(t, deltas, 2)

	// Bihar is absent from biometric entirely, the worst delta.
	assert.Equal(t, ShareDelta{State: "Bihar", Share: 0, EnrolmentShare: 0.3, Delta: -0.3}, deltas[0])
	assert.Equal(t, "Kerala", deltas[1].State)
	assert.InDelta(t, -0.1, deltas[1].Delta, 1e-12)
}

func TestUnderRepresentedTieBreak(t *testing.T) {
	enrol := []StateShare{
		{State: "Odisha", Share: 0.5},
		{State: "Goa", Share: 0.5},
	}

	deltas := UnderRepresented(enrol, nil, 10)
	require.Len(t, deltas, 2)
	assert.Equal(t, "Goa", deltas[0].State)
	assert.Equal(t, "Odisha", deltas[1].State)
}

func TestCollectSkipsMissingFolders(t *testing.T) {
	root := t.TempDir()
	writeCSV(t, filepath.Join(root, "enrolment"), "a.csv", "state,qty\nBihar,1\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "biometric"), 0o755))

	profiles, err := Collect([]Source{
		{Name: "enrolment", Dir: filepath.Join(root, "enrolment")},
		{Name: "demographic", Dir: filepath.Join(root, "demographic")},
		{Name: "biometric", Dir: filepath.Join(root, "biometric")},
	}, nil)
	require.NoError(t, err)

	// demographic has no folder at all and is skipped; biometric exists but
	// is empty and reports an empty profile.
	require.Len(t, profiles, 2)
	assert.Equal(t, "enrolment", profiles[0].Name)
	assert.Equal(t, 1, profiles[0].KPIs.Rows)
	assert.Equal(t, "biometric", profiles[1].Name)
	assert.Equal(t, 0, profiles[1].KPIs.Rows)
	assert.Equal(t, 1.0, profiles[1].KPIs.MissingRate)
}
