package profiling

import (
	"sort"
	"strings"

	"github.com/roach88/enrolscan/internal/table"
)

const (
	binaryShareCutoff   = 0.5
	categoryMaxDistinct = 50
	categoryLimit       = 5
	rateLimit           = 20
	distributionLimit   = 15
)

// outcomeValues normalizes label cells to binary outcomes.
var outcomeValues = map[string]int{
	"success":     1,
	"pass":        1,
	"matched":     1,
	"true":        1,
	"1":           1,
	"failure":     0,
	"fail":        0,
	"not matched": 0,
	"false":       0,
	"0":           0,
}

// MapOutcome normalizes one label cell. ok is false for values outside the
// known success/failure vocabulary.
func MapOutcome(v string) (int, bool) {
	n, ok := outcomeValues[strings.ToLower(v)]
	return n, ok
}

// OutcomeRate is the mean outcome for one category value.
type OutcomeRate struct {
	Value string
	Rate  float64
	Count int
}

// CategoryRates holds per-value success rates for one categorical column.
type CategoryRates struct {
	Column string
	Rates  []OutcomeRate
}

// Outcome is the label-column analysis of a dataset. When at least half of
// all rows map to a binary outcome the column is treated as binary and
// broken down by category; otherwise only the raw value distribution is
// reported.
type Outcome struct {
	Column       string
	Binary       bool
	MappedShare  float64
	SuccessRate  float64
	HasRate      bool
	Distribution []table.ValueCount
	ByCategory   []CategoryRates
}

// AnalyzeOutcome analyzes the first label candidate. It returns nil when
// the table has no label column or no rows.
func AnalyzeOutcome(t *table.Table, roles table.Roles) *Outcome {
	if len(roles.Labels) == 0 || t.Rows == 0 {
		return nil
	}
	label := t.Col(roles.Labels[0])
	out := &Outcome{Column: label.Name}

	mapped := make([]int, t.Rows)
	ok := make([]bool, t.Rows)
	total := 0
	sum := 0
	for i, v := range label.Raw {
		if label.Missing[i] {
			continue
		}
		n, known := MapOutcome(v)
		if !known {
			continue
		}
		mapped[i] = n
		ok[i] = true
		total++
		sum += n
	}

	out.MappedShare = float64(total) / float64(t.Rows)
	if total > 0 {
		out.SuccessRate = float64(sum) / float64(total)
		out.HasRate = true
	}
	out.Binary = out.MappedShare >= binaryShareCutoff

	if !out.Binary {
		out.Distribution = lowerCounts(label, distributionLimit)
		return out
	}

	count := 0
	for _, c := range t.Columns {
		if c.Kind != table.KindString || c.Distinct() > categoryMaxDistinct {
			continue
		}
		rates := categoryRates(c, mapped, ok)
		if len(rates) == 0 {
			continue
		}
		out.ByCategory = append(out.ByCategory, CategoryRates{Column: c.Name, Rates: rates})
		count++
		if count == categoryLimit {
			break
		}
	}
	return out
}

// categoryRates computes the mean mapped outcome per non-missing value of
// c, highest rate first with ties broken by value, capped at rateLimit.
// Values with no mapped observations are dropped.
func categoryRates(c *table.Column, mapped []int, ok []bool) []OutcomeRate {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for i, v := range c.Raw {
		if c.Missing[i] || !ok[i] {
			continue
		}
		sums[v] += mapped[i]
		counts[v]++
	}

	rates := make([]OutcomeRate, 0, len(counts))
	for v, n := range counts {
		rates = append(rates, OutcomeRate{Value: v, Rate: float64(sums[v]) / float64(n), Count: n})
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Rate != rates[j].Rate {
			return rates[i].Rate > rates[j].Rate
		}
		return rates[i].Value < rates[j].Value
	})
	if len(rates) > rateLimit {
		rates = rates[:rateLimit]
	}
	return rates
}

// lowerCounts tallies lowercased non-missing label values, top n.
func lowerCounts(c *table.Column, n int) []table.ValueCount {
	tally := make(map[string]int)
	for i, v := range c.Raw {
		if c.Missing[i] {
			continue
		}
		tally[strings.ToLower(v)]++
	}

	counts := make([]table.ValueCount, 0, len(tally))
	for v, cnt := range tally {
		counts = append(counts, table.ValueCount{Value: v, Count: cnt})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
