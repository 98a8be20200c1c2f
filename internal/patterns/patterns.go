// Package patterns mines the engineered district-days for the seasonal and
// migration signals behind the risk story: harvest-month completion dips,
// districts whose young enrollees stop showing up for biometric updates,
// and whether quarter-end reporting pressure measurably moves completion.
package patterns

import (
	"slices"
	"strings"

	"github.com/roach88/enrolscan/internal/feature"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/stats"
)

// hotspotCap bounds the hotspot list carried into reports; the full count
// is still reported separately.
const hotspotCap = 50

// SeasonalCell is one observed month with its completion averages.
type SeasonalCell struct {
	Month             int
	IsHarvest         bool
	AvgBioCompletion  float64
	AvgDemoCompletion float64
	AvgYouthRatioBio  float64
	Observations      int
}

// DistrictPattern is one district's behavioral profile over the run.
type DistrictPattern struct {
	State    string
	District string

	YouthRatioEnrol   float64
	YouthRatioBio     float64
	AvgBioCompletion  float64
	AvgDemoCompletion float64
	AvgBioGap         float64
	TotalEnrolments   int64

	// YouthUpdateAnomaly is the migration proxy: young people enrolled here
	// but not returning for biometric updates.
	YouthUpdateAnomaly float64
}

// QuarterEndEffect is the two-sample test of completion at quarter end
// against the rest of the year.
type QuarterEndEffect struct {
	TStatistic  float64
	PValue      float64
	Significant bool
}

// Findings is everything the pattern stage discovered.
type Findings struct {
	Seasonal  []SeasonalCell
	Districts []DistrictPattern

	// Hotspots lists districts over the anomaly threshold, under the
	// completion threshold, and above the activity floor, worst first.
	Hotspots     []DistrictPattern
	HotspotCount int

	AnomalyThreshold    float64
	CompletionThreshold float64

	QuarterEnd QuarterEndEffect

	// Mean completion across harvest and non-harvest months, 0 when the
	// run saw no months on that side.
	HarvestAvgBioCompletion    float64
	NonHarvestAvgBioCompletion float64
}

// Discover mines the engineered rows. Only active district-days, those with
// both enrolment and biometric activity, take part; a district with no
// biometric uploads has a data gap, not a behavioral pattern.
func Discover(rows []feature.Row, m *model.Model) Findings {
	active := make([]feature.Row, 0, len(rows))
	for _, r := range rows {
		if r.EnrolCount > 0 && r.BioCount > 0 {
			active = append(active, r)
		}
	}

	f := Findings{
		Seasonal:  seasonalCells(active),
		Districts: districtPatterns(active),
	}

	anomalies := make([]float64, len(f.Districts))
	completions := make([]float64, len(f.Districts))
	for i, d := range f.Districts {
		anomalies[i] = d.YouthUpdateAnomaly
		completions[i] = d.AvgBioCompletion
	}
	f.AnomalyThreshold = stats.Quantile(anomalies, m.Thresholds.AnomalyQuantile)
	f.CompletionThreshold = stats.Quantile(completions, m.Thresholds.CompletionQuantile)

	hotspots := make([]DistrictPattern, 0)
	for _, d := range f.Districts {
		if d.YouthUpdateAnomaly > f.AnomalyThreshold &&
			d.AvgBioCompletion < f.CompletionThreshold &&
			d.TotalEnrolments > m.Thresholds.MinEnrolments {
			hotspots = append(hotspots, d)
		}
	}
	slices.SortFunc(hotspots, func(a, b DistrictPattern) int {
		switch {
		case a.YouthUpdateAnomaly > b.YouthUpdateAnomaly:
			return -1
		case a.YouthUpdateAnomaly < b.YouthUpdateAnomaly:
			return 1
		}
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})
	f.HotspotCount = len(hotspots)
	if len(hotspots) > hotspotCap {
		hotspots = hotspots[:hotspotCap]
	}
	f.Hotspots = hotspots

	f.QuarterEnd = quarterEndEffect(active, m.Thresholds.Significance)

	var harvest, nonHarvest []float64
	for _, c := range f.Seasonal {
		if c.IsHarvest {
			harvest = append(harvest, c.AvgBioCompletion)
		} else {
			nonHarvest = append(nonHarvest, c.AvgBioCompletion)
		}
	}
	f.HarvestAvgBioCompletion = stats.Mean(harvest)
	f.NonHarvestAvgBioCompletion = stats.Mean(nonHarvest)

	return f
}

type seasonalAcc struct {
	isHarvest bool
	n         int
	sumBio    float64
	sumDemo   float64
	sumYrBio  float64
}

func seasonalCells(rows []feature.Row) []SeasonalCell {
	accs := make(map[int]*seasonalAcc)
	for _, r := range rows {
		acc := accs[r.Month]
		if acc == nil {
			acc = &seasonalAcc{isHarvest: r.IsHarvest}
			accs[r.Month] = acc
		}
		acc.n++
		acc.sumBio += r.BioCompletionRate
		acc.sumDemo += r.DemoCompletionRate
		acc.sumYrBio += r.YouthRatioBio
	}

	months := make([]int, 0, len(accs))
	for m := range accs {
		months = append(months, m)
	}
	slices.Sort(months)

	cells := make([]SeasonalCell, 0, len(months))
	for _, m := range months {
		acc := accs[m]
		n := float64(acc.n)
		cells = append(cells, SeasonalCell{
			Month:             m,
			IsHarvest:         acc.isHarvest,
			AvgBioCompletion:  acc.sumBio / n,
			AvgDemoCompletion: acc.sumDemo / n,
			AvgYouthRatioBio:  acc.sumYrBio / n,
			Observations:      acc.n,
		})
	}
	return cells
}

type districtAcc struct {
	state    string
	district string

	n          int
	sumYrEnrol float64
	sumYrBio   float64
	sumBio     float64
	sumDemo    float64
	sumGap     float64
	enrolments int64
}

func districtPatterns(rows []feature.Row) []DistrictPattern {
	accs := make(map[[2]string]*districtAcc)
	for _, r := range rows {
		key := [2]string{r.State, r.District}
		acc := accs[key]
		if acc == nil {
			acc = &districtAcc{state: r.State, district: r.District}
			accs[key] = acc
		}
		acc.n++
		acc.sumYrEnrol += r.YouthRatioEnrol
		acc.sumYrBio += r.YouthRatioBio
		acc.sumBio += r.BioCompletionRate
		acc.sumDemo += r.DemoCompletionRate
		acc.sumGap += float64(r.BioEnrolGap)
		acc.enrolments += r.EnrolCount
	}

	patterns := make([]DistrictPattern, 0, len(accs))
	for _, acc := range accs {
		n := float64(acc.n)
		patterns = append(patterns, DistrictPattern{
			State:              acc.state,
			District:           acc.district,
			YouthRatioEnrol:    acc.sumYrEnrol / n,
			YouthRatioBio:      acc.sumYrBio / n,
			AvgBioCompletion:   acc.sumBio / n,
			AvgDemoCompletion:  acc.sumDemo / n,
			AvgBioGap:          acc.sumGap / n,
			TotalEnrolments:    acc.enrolments,
			YouthUpdateAnomaly: acc.sumYrEnrol/n - acc.sumYrBio/n,
		})
	}

	slices.SortFunc(patterns, func(a, b DistrictPattern) int {
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})
	return patterns
}

func quarterEndEffect(rows []feature.Row, significance float64) QuarterEndEffect {
	var quarterEnd, baseline []float64
	for _, r := range rows {
		if r.IsQuarterEnd {
			quarterEnd = append(quarterEnd, r.BioCompletionRate)
		} else {
			baseline = append(baseline, r.BioCompletionRate)
		}
	}

	result, ok := stats.PooledTTest(quarterEnd, baseline)
	if !ok {
		// Too little data or no variance: report no detectable effect.
		return QuarterEndEffect{TStatistic: 0, PValue: 1, Significant: false}
	}
	return QuarterEndEffect{
		TStatistic:  result.T,
		PValue:      result.P,
		Significant: result.P < significance,
	}
}
