// Package profiling builds per-dataset schema and outcome reports for the
// profile and dashboard commands. It works on generically loaded tables,
// so it accepts any column layout the publishers ship, not just the three
// canonical extracts.
package profiling

import (
	"path/filepath"

	"github.com/roach88/enrolscan/internal/table"
)

const (
	sampleFileLimit  = 5
	sampleValueLimit = 5
)

// ColumnSchema describes one column of a profiled dataset.
type ColumnSchema struct {
	Name        string
	Kind        string
	MissingRate float64
	Distinct    int
	Samples     []string
}

// Schema is the dataset-level schema report.
type Schema struct {
	Rows        int
	Cols        int
	SourceFiles []string
	SampleFiles []string
	Columns     []ColumnSchema
}

// Profile is the full profiling view of one dataset.
type Profile struct {
	Name    string
	Schema  Schema
	Roles   table.Roles
	Outcome *Outcome
	Metrics Metrics
	Daily   []table.DayCount
}

// Analyze profiles a loaded table: schema, column roles, outcome analysis
// when a label column exists, dashboard metrics, and daily volume off the
// first date column.
func Analyze(name string, t *table.Table) Profile {
	p := Profile{
		Name:   name,
		Schema: buildSchema(t),
		Roles:  table.Identify(t),
	}
	p.Outcome = AnalyzeOutcome(t, p.Roles)
	p.Metrics = metricsFrom(t, p.Roles, p.Outcome)
	if len(p.Roles.Datetime) > 0 {
		p.Daily = t.Col(p.Roles.Datetime[0]).DailyCounts()
	}
	return p
}

func buildSchema(t *table.Table) Schema {
	s := Schema{
		Rows:        t.Rows,
		Cols:        len(t.Columns),
		SampleFiles: t.SampleSources(sampleFileLimit),
	}
	for _, src := range t.Sources {
		s.SourceFiles = append(s.SourceFiles, filepath.Base(src))
	}
	for _, c := range t.Columns {
		s.Columns = append(s.Columns, ColumnSchema{
			Name:        c.Name,
			Kind:        c.Kind.String(),
			MissingRate: c.MissingRate(),
			Distinct:    c.Distinct(),
			Samples:     sampleValues(c, sampleValueLimit),
		})
	}
	return s
}

// sampleValues returns up to limit distinct non-missing raw values in
// first-seen order.
func sampleValues(c *table.Column, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for i, v := range c.Raw {
		if c.Missing[i] {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
