package harness

import (
	"fmt"
	"sort"

	"github.com/roach88/enrolscan/internal/pipeline"
)

// AssertionError describes one failed expectation with enough context to
// debug it from the test log alone.
type AssertionError struct {
	Field    string // scenario expectation field
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expectation %s failed\n  expected: %s\n  actual: %s",
		e.Field, e.Expected, e.Actual)
}

// EvaluateExpectations checks every outcome expectation against a
// successful run and returns one message per failure. The error
// expectation is evaluated by Run, which also sees failed runs.
func EvaluateExpectations(res *pipeline.Results, e *Expectations) []string {
	var errs []string
	fail := func(field, expected, actual string) {
		errs = append(errs, (&AssertionError{Field: field, Expected: expected, Actual: actual}).Error())
	}

	if e.Districts != nil && len(res.Scores) != *e.Districts {
		fail("districts",
			fmt.Sprintf("%d scored district(s)", *e.Districts),
			fmt.Sprintf("%d", len(res.Scores)))
	}

	if e.TopDistrict != "" || e.TopBand != "" {
		if len(res.Scores) == 0 {
			if e.TopDistrict != "" {
				fail("top_district", e.TopDistrict, "no districts scored")
			}
			if e.TopBand != "" {
				fail("top_band", e.TopBand, "no districts scored")
			}
		} else {
			top := res.Scores[0]
			if e.TopDistrict != "" && top.District != e.TopDistrict {
				fail("top_district", e.TopDistrict, top.District)
			}
			if e.TopBand != "" && top.Band != e.TopBand {
				fail("top_band", e.TopBand,
					fmt.Sprintf("%s (CERS %.2f)", top.Band, top.CERS))
			}
		}
	}

	// Sorted labels keep failure order stable across runs.
	labels := make([]string, 0, len(e.Bands))
	for label := range e.Bands {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		want := e.Bands[label]
		if got := res.Summary.BandCounts[label]; got != want {
			fail("bands",
				fmt.Sprintf("%d district(s) in band %s", want, label),
				fmt.Sprintf("%d", got))
		}
	}

	if e.QuarterEndSignificant != nil && res.Patterns.QuarterEnd.Significant != *e.QuarterEndSignificant {
		q := res.Patterns.QuarterEnd
		fail("quarter_end_significant",
			fmt.Sprintf("%t", *e.QuarterEndSignificant),
			fmt.Sprintf("%t (t = %.2f, p = %.4f)", q.Significant, q.TStatistic, q.PValue))
	}

	if e.Hotspots != nil && res.Patterns.HotspotCount != *e.Hotspots {
		fail("hotspots",
			fmt.Sprintf("%d hotspot(s)", *e.Hotspots),
			fmt.Sprintf("%d", res.Patterns.HotspotCount))
	}

	if e.VansNeeded != nil && res.Plan.Vans.VansNeeded != *e.VansNeeded {
		fail("vans_needed",
			fmt.Sprintf("%d van(s)", *e.VansNeeded),
			fmt.Sprintf("%d", res.Plan.Vans.VansNeeded))
	}

	if e.AlertDistricts != nil && len(res.Plan.Alerts.Districts) != *e.AlertDistricts {
		fail("alert_districts",
			fmt.Sprintf("%d alert district(s)", *e.AlertDistricts),
			fmt.Sprintf("%d", len(res.Plan.Alerts.Districts)))
	}

	return errs
}
