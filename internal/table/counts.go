package table

import (
	"sort"

	"github.com/roach88/enrolscan/internal/dataset"
)

// ValueCount is one tally from ValueCounts.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts tallies the non-missing raw values of a column, most
// frequent first with ties broken by value.
func (c *Column) ValueCounts() []ValueCount {
	tally := make(map[string]int)
	for i, v := range c.Raw {
		if c.Missing[i] {
			continue
		}
		tally[v]++
	}

	counts := make([]ValueCount, 0, len(tally))
	for v, n := range tally {
		counts = append(counts, ValueCount{Value: v, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	return counts
}

// DayCount is one day's row tally from DailyCounts.
type DayCount struct {
	Day   dataset.Date
	Count int
}

// DailyCounts tallies parsed dates per calendar day in ascending date
// order. Non-date columns yield nil.
func (c *Column) DailyCounts() []DayCount {
	if c.Kind != KindDate {
		return nil
	}

	tally := make(map[dataset.Date]int)
	for i, day := range c.Dates {
		if c.Missing[i] {
			continue
		}
		tally[day]++
	}

	counts := make([]DayCount, 0, len(tally))
	for day, n := range tally {
		counts = append(counts, DayCount{Day: day, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Day.Compare(counts[j].Day) < 0
	})
	return counts
}
