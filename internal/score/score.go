// Package score computes the Citizen Exclusion Risk Score (CERS), a
// composite 0-100 metric ranking districts by how likely residents are to
// fall out of the identity system through missed biometric updates.
package score

import (
	"math"
	"slices"
	"strings"

	"github.com/roach88/enrolscan/internal/feature"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/stats"
)

// DistrictRisk is one scored district with its aggregates, component
// scores, and composite CERS.
type DistrictRisk struct {
	State    string
	District string

	// District-level aggregates over the observed days.
	AvgBioCompletion  float64
	AvgDemoCompletion float64
	AvgBioGap         float64
	BioGapVolatility  float64
	YouthRatioEnrol   float64
	YouthRatioBio     float64
	TotalEnrolments   int64

	// Component scores, each on a 0-100 scale where 100 is highest risk.
	GapRisk            float64
	MigrationRisk      float64
	VolatilityRisk     float64
	VolumePressureRisk float64

	CERS float64
	Band string
}

// Summary condenses a scored run for the executive report.
type Summary struct {
	TotalDistricts int
	BandCounts     map[string]int
	AvgCERS        float64
	Top            []DistrictRisk
}

const summaryTopN = 10

type accumulator struct {
	state    string
	district string

	n          int
	sumBio     float64
	sumDemo    float64
	sumYrEnrol float64
	sumYrBio   float64
	gaps       []float64
	enrolments int64
}

// Compute aggregates the engineered rows per district and scores each one.
// Results are sorted by CERS descending; ties fall back to state then
// district so equal scores always list in the same order.
func Compute(rows []feature.Row, m *model.Model) []DistrictRisk {
	accs := make(map[[2]string]*accumulator)
	for _, r := range rows {
		key := [2]string{r.State, r.District}
		acc := accs[key]
		if acc == nil {
			acc = &accumulator{state: r.State, district: r.District}
			accs[key] = acc
		}
		acc.n++
		acc.sumBio += r.BioCompletionRate
		acc.sumDemo += r.DemoCompletionRate
		acc.sumYrEnrol += r.YouthRatioEnrol
		acc.sumYrBio += r.YouthRatioBio
		acc.gaps = append(acc.gaps, float64(r.BioEnrolGap))
		acc.enrolments += r.EnrolCount
	}

	risks := make([]DistrictRisk, 0, len(accs))
	for _, acc := range accs {
		n := float64(acc.n)
		risks = append(risks, DistrictRisk{
			State:             acc.state,
			District:          acc.district,
			AvgBioCompletion:  acc.sumBio / n,
			AvgDemoCompletion: acc.sumDemo / n,
			AvgBioGap:         stats.Mean(acc.gaps),
			BioGapVolatility:  stats.StdDev(acc.gaps),
			YouthRatioEnrol:   acc.sumYrEnrol / n,
			YouthRatioBio:     acc.sumYrBio / n,
			TotalEnrolments:   acc.enrolments,
		})
	}

	// Component scores depend on cross-district statistics (max volatility,
	// volume rank), so fix the order before computing them.
	sortByDistrict(risks)
	scoreComponents(risks, m)

	slices.SortFunc(risks, func(a, b DistrictRisk) int {
		switch {
		case a.CERS > b.CERS:
			return -1
		case a.CERS < b.CERS:
			return 1
		}
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})
	return risks
}

func sortByDistrict(risks []DistrictRisk) {
	slices.SortFunc(risks, func(a, b DistrictRisk) int {
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})
}

func scoreComponents(risks []DistrictRisk, m *model.Model) {
	maxVolatility := 0.0
	volumes := make([]float64, len(risks))
	for i, r := range risks {
		if r.BioGapVolatility > maxVolatility {
			maxVolatility = r.BioGapVolatility
		}
		volumes[i] = float64(r.TotalEnrolments)
	}
	volumeRanks := stats.PercentileRanks(volumes)

	for i := range risks {
		r := &risks[i]

		// Update gap: lower biometric completion means higher risk.
		r.GapRisk = 100 - stats.Clamp(r.AvgBioCompletion, 0, 100)

		// Migration proxy: divergence between enrolment and biometric youth
		// shares, scaled so a 0.2 divergence saturates the component.
		r.MigrationRisk = stats.Clamp(math.Abs(r.YouthRatioEnrol-r.YouthRatioBio)*500, 0, 100)

		// Volatility relative to the most volatile district in the run.
		if maxVolatility > 0 {
			r.VolatilityRisk = r.BioGapVolatility / maxVolatility * 100
		} else {
			r.VolatilityRisk = 0
		}

		// Volume pressure: heavy caseload compounding poor completion.
		r.VolumePressureRisk = stats.Clamp(volumeRanks[i]*(100-r.AvgBioCompletion), 0, 100)

		cers := r.GapRisk*m.Weights.Gap +
			r.MigrationRisk*m.Weights.Migration +
			r.VolatilityRisk*m.Weights.Volatility +
			r.VolumePressureRisk*m.Weights.VolumePressure
		r.CERS = stats.Round(cers, 2)
		r.Band = m.BandFor(r.CERS)
	}
}

// Summarize tallies band membership and pulls the highest-scoring districts
// for the executive report.
func Summarize(risks []DistrictRisk, m *model.Model) Summary {
	s := Summary{
		TotalDistricts: len(risks),
		BandCounts:     make(map[string]int, len(m.Bands)),
	}
	for _, label := range m.BandLabels() {
		s.BandCounts[label] = 0
	}

	sum := 0.0
	for _, r := range risks {
		s.BandCounts[r.Band]++
		sum += r.CERS
	}
	if len(risks) > 0 {
		s.AvgCERS = sum / float64(len(risks))
	}

	top := summaryTopN
	if top > len(risks) {
		top = len(risks)
	}
	s.Top = slices.Clone(risks[:top])
	return s
}
