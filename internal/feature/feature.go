// Package feature derives per-district-day indicators from the joined
// counts: update gaps against enrolment activity, completion rates, youth
// share ratios, and the calendar flags behind the seasonal analysis.
package feature

import (
	"github.com/roach88/enrolscan/internal/aggregate"
	"github.com/roach88/enrolscan/internal/model"
)

// Row is one district-day carrying the joined counts plus every derived
// indicator downstream stages read.
type Row struct {
	aggregate.DistrictDay

	// Age band totals per family.
	TotalEnrol int64
	TotalDemo  int64
	TotalBio   int64

	// Gaps between enrolment activity and update activity. Positive means
	// updates are falling behind new enrolments.
	DemoEnrolGap int64
	BioEnrolGap  int64
	BioDemoGap   int64

	// Updates per hundred enrolment records. A district with no enrolment
	// activity has nothing to complete, so its rate reads 100.
	DemoCompletionRate float64
	BioCompletionRate  float64

	// Youth share of each family's age bands, 0 when the family saw no
	// activity. Divergence between enrolment and biometric youth shares is
	// the migration proxy.
	YouthRatioEnrol float64
	YouthRatioDemo  float64
	YouthRatioBio   float64

	// Calendar features. DayOfWeek counts Monday as 0.
	Month        int
	Quarter      int
	DayOfWeek    int
	IsQuarterEnd bool
	IsHarvest    bool
	IsFestival   bool
}

// Engineer computes the derived indicators for every joined district-day.
// Input order is preserved.
func Engineer(days []aggregate.DistrictDay, cal model.Calendar) []Row {
	rows := make([]Row, len(days))
	for i, d := range days {
		rows[i] = engineerRow(d, cal)
	}
	return rows
}

func engineerRow(d aggregate.DistrictDay, cal model.Calendar) Row {
	r := Row{DistrictDay: d}

	r.TotalEnrol = d.EnrolUnder5 + d.EnrolYouth + d.EnrolAdult
	r.TotalDemo = d.DemoYouth + d.DemoAdult
	r.TotalBio = d.BioYouth + d.BioAdult

	r.DemoEnrolGap = d.EnrolCount - d.DemoCount
	r.BioEnrolGap = d.EnrolCount - d.BioCount
	r.BioDemoGap = d.DemoCount - d.BioCount

	r.DemoCompletionRate = completionRate(d.DemoCount, d.EnrolCount)
	r.BioCompletionRate = completionRate(d.BioCount, d.EnrolCount)

	r.YouthRatioEnrol = ratio(d.EnrolYouth, r.TotalEnrol)
	r.YouthRatioDemo = ratio(d.DemoYouth, r.TotalDemo)
	r.YouthRatioBio = ratio(d.BioYouth, r.TotalBio)

	month := int(d.Day.Month)
	r.Month = month
	r.Quarter = d.Day.Quarter()
	r.DayOfWeek = d.Day.Weekday()
	r.IsQuarterEnd = cal.IsQuarterEnd(month)
	r.IsHarvest = cal.IsHarvest(month)
	r.IsFestival = cal.IsFestival(month)

	return r
}

func completionRate(updates, enrolments int64) float64 {
	if enrolments <= 0 {
		return 100
	}
	return float64(updates) / float64(enrolments) * 100
}

func ratio(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
