// Package table is the schema-agnostic CSV loader behind profiling and
// insights. Unlike the typed extract loader, it accepts whatever columns a
// file carries: every cell is kept as text, then each column is coerced to
// a number or calendar date when its name or contents justify it. Missing
// cells stay missing instead of defaulting, so data quality can be
// measured rather than papered over.
package table

import (
	"path/filepath"
	"sort"

	"github.com/roach88/enrolscan/internal/dataset"
)

// Kind classifies a coerced column.
type Kind int

const (
	KindString Kind = iota
	KindNumeric
	KindDate
)

// String returns the dtype name used in schema reports.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Column is one coerced column. Raw always holds the original cell text;
// Floats or Dates hold parsed values for the rows where Missing is false.
type Column struct {
	Name    string
	Kind    Kind
	Raw     []string
	Missing []bool
	Floats  []float64
	Dates   []dataset.Date
}

// Distinct counts unique non-missing raw values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	for i, v := range c.Raw {
		if c.Missing[i] {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// MissingRate is the share of missing cells in the column.
func (c *Column) MissingRate() float64 {
	if len(c.Missing) == 0 {
		return 1
	}
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return float64(n) / float64(len(c.Missing))
}

// Table is a generic loaded table: the union of every contributing file's
// columns, with per-row provenance.
type Table struct {
	Columns []*Column
	Rows    int
	Sources []string

	// sourceOf[i] indexes Sources for row i.
	sourceOf []int
}

// Col returns the named column, nil when absent.
func (t *Table) Col(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// MissingRate is the mean of the per-column missing rates, 1 for a table
// with no rows or no columns.
func (t *Table) MissingRate() float64 {
	if t.Rows == 0 || len(t.Columns) == 0 {
		return 1
	}
	var total float64
	for _, c := range t.Columns {
		total += c.MissingRate()
	}
	return total / float64(len(t.Columns))
}

// SampleSources returns the distinct source file basenames contributing the
// first n rows, sorted. Schema reports use this to name example inputs
// without listing every file.
func (t *Table) SampleSources(n int) []string {
	if n > t.Rows {
		n = t.Rows
	}
	seen := make(map[string]struct{})
	for i := 0; i < n; i++ {
		base := filepath.Base(t.Sources[t.sourceOf[i]])
		seen[base] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
