// Package insight computes dataset-level KPIs for the national insights
// report: row and column counts, missing rates, date spans, state volume
// shares, cross-dataset representation deltas, and daily throughput.
// Rendering lives in the report package; everything here is pure
// computation over loaded tables.
package insight

import (
	"math"
	"sort"
	"strings"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/stats"
	"github.com/roach88/enrolscan/internal/table"
)

// KPIs summarizes one dataset. Column names are empty and HasDates false
// when the corresponding column was not detected.
type KPIs struct {
	Rows        int
	Cols        int
	MissingRate float64
	DatetimeCol string
	StateCol    string
	DistrictCol string
	HasDates    bool
	DateMin     dataset.Date
	DateMax     dataset.Date
	States      int
	Districts   int
}

// StateShare is one state's share of a dataset's rows.
type StateShare struct {
	State string
	Share float64
}

// ShareDelta compares a state's share in one dataset against its share in
// the enrolment dataset. Negative deltas mark under-representation.
type ShareDelta struct {
	State          string
	Share          float64
	EnrolmentShare float64
	Delta          float64
}

// DatasetProfile is the full insight view of one dataset.
type DatasetProfile struct {
	Name        string
	KPIs        KPIs
	StateShares []StateShare
	DailyVolume []table.DayCount
	Columns     []string
}

// Profile computes the insight view of a loaded table. A table with no
// rows yields zeroed KPIs with a missing rate of 1.
func Profile(name string, t *table.Table) DatasetProfile {
	p := DatasetProfile{Name: name, Columns: t.ColumnNames()}
	if t.Rows == 0 {
		p.KPIs.MissingRate = 1
		return p
	}

	k := &p.KPIs
	k.Rows = t.Rows
	k.Cols = len(t.Columns)
	k.MissingRate = t.MissingRate()

	roles := table.Identify(t)
	if len(roles.Datetime) > 0 {
		k.DatetimeCol = roles.Datetime[0]
	}
	k.StateCol = pickColumn(p.Columns, "state")
	k.DistrictCol = pickColumn(p.Columns, "district")

	if k.DatetimeCol != "" {
		col := t.Col(k.DatetimeCol)
		first := true
		for i, day := range col.Dates {
			if col.Missing[i] {
				continue
			}
			if first {
				k.DateMin, k.DateMax = day, day
				first = false
				continue
			}
			if day.Before(k.DateMin) {
				k.DateMin = day
			}
			if k.DateMax.Before(day) {
				k.DateMax = day
			}
		}
		k.HasDates = !first
		p.DailyVolume = col.DailyCounts()
	}

	if k.StateCol != "" {
		col := t.Col(k.StateCol)
		k.States = col.Distinct()
		p.StateShares = shares(col)
	}
	if k.DistrictCol != "" {
		k.Districts = t.Col(k.DistrictCol).Distinct()
	}
	return p
}

// Volatility is the std over mean ratio of the daily volume, with the mean
// floored at 1. ok is false when no dated rows exist.
func (p *DatasetProfile) Volatility() (float64, bool) {
	if len(p.DailyVolume) == 0 {
		return 0, false
	}
	vals := make([]float64, len(p.DailyVolume))
	for i, dc := range p.DailyVolume {
		vals[i] = float64(dc.Count)
	}
	return stats.StdDev(vals) / math.Max(1, stats.Mean(vals)), true
}

// UnderRepresented returns the limit states with the lowest share delta
// relative to enrolment. States absent from one side contribute a zero
// share there; ties break by state name.
func UnderRepresented(enrolment, target []StateShare, limit int) []ShareDelta {
	byState := make(map[string]*ShareDelta)
	for _, s := range enrolment {
		byState[s.State] = &ShareDelta{State: s.State, EnrolmentShare: s.Share}
	}
	for _, s := range target {
		d, ok := byState[s.State]
		if !ok {
			d = &ShareDelta{State: s.State}
			byState[s.State] = d
		}
		d.Share = s.Share
	}

	deltas := make([]ShareDelta, 0, len(byState))
	for _, d := range byState {
		d.Delta = d.Share - d.EnrolmentShare
		deltas = append(deltas, *d)
	}
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].Delta != deltas[j].Delta {
			return deltas[i].Delta < deltas[j].Delta
		}
		return deltas[i].State < deltas[j].State
	})
	if len(deltas) > limit {
		deltas = deltas[:limit]
	}
	return deltas
}

// pickColumn returns the first column whose lowercased name contains key.
func pickColumn(names []string, key string) string {
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), key) {
			return name
		}
	}
	return ""
}

// shares converts a column's value counts into row shares, keeping the
// most-frequent-first order.
func shares(c *table.Column) []StateShare {
	counts := c.ValueCounts()
	total := 0
	for _, vc := range counts {
		total += vc.Count
	}
	if total == 0 {
		return nil
	}
	out := make([]StateShare, len(counts))
	for i, vc := range counts {
		out[i] = StateShare{State: vc.Value, Share: float64(vc.Count) / float64(total)}
	}
	return out
}
