package profiling

import "github.com/roach88/enrolscan/internal/table"

const (
	geoLimit = 2
	geoTopN  = 10
)

// GeoTop is the leading values of one geography column.
type GeoTop struct {
	Column string
	Top    []table.ValueCount
}

// Metrics is the compact per-dataset view the comparison dashboard plots.
type Metrics struct {
	Rows        int
	Cols        int
	Numeric     int
	Categorical int
	Datetime    int
	MissingRate float64
	HasLabel    bool
	SuccessRate float64
	HasSuccess  bool
	TopGeo      []GeoTop
}

// ComputeMetrics summarizes a loaded table for the dashboard. An empty
// table reports a missing rate of 1 and nothing else.
func ComputeMetrics(t *table.Table) Metrics {
	if t.Rows == 0 {
		return Metrics{MissingRate: 1}
	}
	roles := table.Identify(t)
	return metricsFrom(t, roles, AnalyzeOutcome(t, roles))
}

func metricsFrom(t *table.Table, roles table.Roles, outcome *Outcome) Metrics {
	if t.Rows == 0 {
		return Metrics{MissingRate: 1}
	}
	m := Metrics{
		Rows:        t.Rows,
		Cols:        len(t.Columns),
		Numeric:     len(roles.Numeric),
		Categorical: len(roles.Categorical),
		Datetime:    len(roles.Datetime),
		MissingRate: t.MissingRate(),
	}
	if outcome != nil {
		m.HasLabel = true
		m.SuccessRate = outcome.SuccessRate
		m.HasSuccess = outcome.HasRate
	}
	for _, g := range roles.Geo {
		if len(m.TopGeo) == geoLimit {
			break
		}
		top := t.Col(g).ValueCounts()
		if len(top) > geoTopN {
			top = top[:geoTopN]
		}
		m.TopGeo = append(m.TopGeo, GeoTop{Column: g, Top: top})
	}
	return m
}
