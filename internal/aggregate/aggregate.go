// Package aggregate reduces raw extract rows to district-day granularity
// and joins the three families into one table.
//
// Each family is grouped by (day, state, district): age bands sum, and the
// record count per group becomes the family's activity count (each record
// is one pincode's report). The join is a full outer join; a district-day
// absent from a family contributes zeros, never missing values.
package aggregate

import (
	"slices"
	"strings"

	"github.com/roach88/enrolscan/internal/dataset"
)

// Key identifies one district-day group.
type Key struct {
	Day      dataset.Date
	State    string
	District string
}

// DistrictDay is one row of the joined table: every count the three
// families reported for a district on a day.
type DistrictDay struct {
	Day      dataset.Date
	State    string
	District string

	EnrolUnder5 int64
	EnrolYouth  int64
	EnrolAdult  int64
	EnrolCount  int64

	DemoYouth int64
	DemoAdult int64
	DemoCount int64

	BioYouth int64
	BioAdult int64
	BioCount int64
}

// Key returns the row's group key.
func (d DistrictDay) Key() Key {
	return Key{Day: d.Day, State: d.State, District: d.District}
}

// Join aggregates each dataset to district-day level and outer-joins the
// results. Rows come back sorted by (day, state, district) so every
// downstream traversal is deterministic. Any dataset may be nil.
func Join(enrol, demo, bio *dataset.Dataset) []DistrictDay {
	groups := make(map[Key]*DistrictDay)

	get := func(k Key) *DistrictDay {
		if g, ok := groups[k]; ok {
			return g
		}
		g := &DistrictDay{Day: k.Day, State: k.State, District: k.District}
		groups[k] = g
		return g
	}

	if enrol != nil {
		for _, r := range enrol.Rows {
			g := get(Key{Day: r.Day, State: r.State, District: r.District})
			g.EnrolUnder5 += r.AgeUnder5
			g.EnrolYouth += r.AgeYouth
			g.EnrolAdult += r.AgeAdult
			g.EnrolCount++
		}
	}
	if demo != nil {
		for _, r := range demo.Rows {
			g := get(Key{Day: r.Day, State: r.State, District: r.District})
			g.DemoYouth += r.AgeYouth
			g.DemoAdult += r.AgeAdult
			g.DemoCount++
		}
	}
	if bio != nil {
		for _, r := range bio.Rows {
			g := get(Key{Day: r.Day, State: r.State, District: r.District})
			g.BioYouth += r.AgeYouth
			g.BioAdult += r.AgeAdult
			g.BioCount++
		}
	}

	rows := make([]DistrictDay, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, *g)
	}
	slices.SortFunc(rows, func(a, b DistrictDay) int {
		if c := a.Day.Compare(b.Day); c != 0 {
			return c
		}
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})
	return rows
}
