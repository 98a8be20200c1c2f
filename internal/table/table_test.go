package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/dataset"
)

// writeCSV writes a fixture under dir, creating parents.
func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMergesColumnsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv",
		"state,district,qty\n"+
			"Bihar,Patna,5\n"+
			"Bihar,Gaya,7\n")
	writeCSV(t, dir, "b.csv",
		"district,state,remark\n"+
			"Araria,Bihar,ok\n")

	tab, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, tab.Rows)
	assert.Len(t, tab.Sources, 2)
	assert.Equal(t, []string{"state", "district", "qty", "remark"}, tab.ColumnNames())

	// qty parses in 2 of 3 rows, enough for numeric; the b.csv row is missing.
	qty := tab.Col("qty")
	require.NotNil(t, qty)
	assert.Equal(t, KindNumeric, qty.Kind)
	assert.Equal(t, []float64{5, 7, 0}, qty.Floats)
	assert.Equal(t, []bool{false, false, true}, qty.Missing)

	remark := tab.Col("remark")
	require.NotNil(t, remark)
	assert.Equal(t, KindString, remark.Kind)
	assert.Equal(t, []string{"", "", "ok"}, remark.Raw)
	assert.Equal(t, []bool{true, true, false}, remark.Missing)

	// b.csv lists district first; merging is by name, not position.
	state := tab.Col("state")
	require.NotNil(t, state)
	assert.Equal(t, []string{"Bihar", "Bihar", "Bihar"}, state.Raw)
}

func TestLoadCleansNumericText(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "fees.csv",
		"state,amount\n"+
			"A,\"1,234\"\n"+
			"B,86%\n"+
			"C,Rs 500\n"+
			"D,n/a\n")

	tab, err := Load(dir, nil)
	require.NoError(t, err)

	amount := tab.Col("amount")
	require.NotNil(t, amount)
	assert.Equal(t, KindNumeric, amount.Kind)
	assert.Equal(t, []float64{1234, 86, 500, 0}, amount.Floats)
	assert.Equal(t, []bool{false, false, false, true}, amount.Missing)
}

func TestLoadNumericNeedsMajority(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "codes.csv",
		"state,code\n"+
			"A,12\n"+
			"B,34\n"+
			"C,x\n"+
			"D,y\n")

	tab, err := Load(dir, nil)
	require.NoError(t, err)

	// Exactly half the rows parse, which is not a majority.
	code := tab.Col("code")
	require.NotNil(t, code)
	assert.Equal(t, KindString, code.Kind)
	assert.Equal(t, []string{"12", "34", "x", "y"}, code.Raw)
	assert.Equal(t, []bool{false, false, false, false}, code.Missing)
}

func TestLoadCoercesDatesByName(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "updates.csv",
		"last_update_dt,state\n"+
			"15-03-2025,A\n"+
			"junk,B\n"+
			"01/04/2025,C\n")

	tab, err := Load(dir, nil)
	require.NoError(t, err)

	col := tab.Col("last_update_dt")
	require.NotNil(t, col)
	assert.Equal(t, KindDate, col.Kind)
	assert.Equal(t, dataset.Date{Year: 2025, Month: time.March, Day: 15}, col.Dates[0])
	assert.True(t, col.Missing[1])
	assert.Equal(t, dataset.Date{Year: 2025, Month: time.April, Day: 1}, col.Dates[2])
}

func TestLoadSkipsSingleColumnFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "good.csv", "state,qty\nA,1\n")
	writeCSV(t, dir, "lone.csv", "notes\nhello\nworld\n")

	tab, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tab.Rows)
	assert.Len(t, tab.Sources, 1)
	assert.Equal(t, "good.csv", filepath.Base(tab.Sources[0]))
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"), nil)
	require.Error(t, err)

	var loadErr *dataset.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, dataset.ErrCodeDirNotFound, loadErr.Code)
}

func TestIdentifyRoles(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("state,district,verification_status,age,enrolment_date,remark\n")
	for i := 0; i < 101; i++ {
		fmt.Fprintf(&sb, "Bihar,Patna,Success,%d,15-03-2025,note-%d\n", 20+i, i)
	}
	writeCSV(t, dir, "events.csv", sb.String())

	tab, err := Load(dir, nil)
	require.NoError(t, err)

	roles := Identify(tab)
	assert.Equal(t, []string{"age"}, roles.Numeric)
	assert.Equal(t, []string{"enrolment_date"}, roles.Datetime)
	// remark has 101 distinct values and falls off the categorical list.
	assert.Equal(t, []string{"state", "district", "verification_status"}, roles.Categorical)
	assert.Equal(t, []string{"verification_status"}, roles.Labels)
	assert.Equal(t, []string{"state", "district"}, roles.Geo)
}

func TestValueCounts(t *testing.T) {
	col := &Column{
		Name:    "state",
		Kind:    KindString,
		Raw:     []string{"B", "A", "A", "C", "B", ""},
		Missing: []bool{false, false, false, false, false, true},
	}

	counts := col.ValueCounts()
	assert.Equal(t, []ValueCount{
		{Value: "A", Count: 2},
		{Value: "B", Count: 2},
		{Value: "C", Count: 1},
	}, counts)
}

func TestDailyCounts(t *testing.T) {
	mar := func(d int) dataset.Date { return dataset.Date{Year: 2025, Month: time.March, Day: d} }
	col := &Column{
		Name:    "date",
		Kind:    KindDate,
		Dates:   []dataset.Date{mar(2), mar(1), mar(2), {}},
		Missing: []bool{false, false, false, true},
	}

	counts := col.DailyCounts()
	assert.Equal(t, []DayCount{
		{Day: mar(1), Count: 1},
		{Day: mar(2), Count: 2},
	}, counts)

	text := &Column{Name: "state", Kind: KindString}
	assert.Nil(t, text.DailyCounts())
}

func TestMissingRate(t *testing.T) {
	tab := &Table{
		Rows: 2,
		Columns: []*Column{
			{Name: "a", Missing: []bool{false, false}},
			{Name: "b", Missing: []bool{true, false}},
		},
	}
	assert.InDelta(t, 0.25, tab.MissingRate(), 1e-12)

	empty := &Table{}
	assert.Equal(t, 1.0, empty.MissingRate())
}

func TestSampleSources(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "b_second.csv", "state,qty\nA,1\nB,2\n")
	writeCSV(t, dir, "a_first.csv", "state,qty\nC,3\n")

	tab, err := Load(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 3, tab.Rows)

	// Files load in sorted path order, so a_first contributes the first row.
	assert.Equal(t, []string{"a_first.csv"}, tab.SampleSources(1))
	assert.Equal(t, []string{"a_first.csv", "b_second.csv"}, tab.SampleSources(10))
}
