package model

import "slices"

// Weights are the component weights of the composite score. They must sum
// to 1.
type Weights struct {
	Gap            float64
	Migration      float64
	Volatility     float64
	VolumePressure float64
}

// Band is one risk band: scores in (lower, Upper] take Label, where lower
// is the previous band's Upper (0 for the first band). A literal zero score
// belongs to the first band.
type Band struct {
	Label string
	Upper float64
}

// Calendar holds the month sets behind the temporal flags.
type Calendar struct {
	QuarterEndMonths []int
	HarvestMonths    []int
	FestivalMonths   []int
}

// IsQuarterEnd reports whether month m closes a quarter.
func (c Calendar) IsQuarterEnd(m int) bool {
	return slices.Contains(c.QuarterEndMonths, m)
}

// IsHarvest reports whether month m falls in a harvest window.
func (c Calendar) IsHarvest(m int) bool {
	return slices.Contains(c.HarvestMonths, m)
}

// IsFestival reports whether month m falls in a festival window.
func (c Calendar) IsFestival(m int) bool {
	return slices.Contains(c.FestivalMonths, m)
}

// Thresholds tune the pattern miner.
type Thresholds struct {
	AnomalyQuantile    float64 // youth anomaly above this quantile flags a district
	CompletionQuantile float64 // biometric completion below this quantile flags a district
	MinEnrolments      int64   // districts below this activity floor are ignored
	Significance       float64 // p-value cutoff for the quarter-end test
	RecentWindowDays   int     // alert window measured back from the latest day
}

// Intervention holds the field-program parameters.
type Intervention struct {
	DistrictsPerVan          int
	ResponseRate             float64 // share of alerted citizens expected to respond
	SMSCost                  float64 // rupees per message
	AlertCompletionCutoff    float64 // alert districts below this biometric completion
	AlertMinEnrolments       int64   // and above this recent activity
	CapacityVolatilityCutoff float64 // volatility risk above this marks capacity work
	CentersPerDistrict       int
}

// Economics holds the cost-benefit assumptions, all amounts in rupees.
type Economics struct {
	CostPerExcludedCitizen float64
	VanMonthlyCost         float64
	CenterUpgradeCost      float64
	AnnualBenefit          float64 // average yearly benefit value per citizen
	ReapplicationCost      float64
	CitizensPerVanPerDay   int
	WorkingDaysPerMonth    int
	VanUtilization         float64
	EfficiencyGain         float64
	ExclusionRate          float64 // share of priority-district population at risk
	ReapplicationShare     float64 // share of helped citizens spared a reapplication
	FamilySize             float64
}

// Model is a complete compiled scoring model.
type Model struct {
	Name         string
	Weights      Weights
	Bands        []Band
	Calendar     Calendar
	Thresholds   Thresholds
	Intervention Intervention
	Economics    Economics
}

// BandFor classifies a composite score. Scores are produced clamped to
// [0, 100]; zero belongs to the first band, anything above the last upper
// bound takes the last label.
func (m *Model) BandFor(score float64) string {
	if len(m.Bands) == 0 {
		return ""
	}
	if score <= m.Bands[0].Upper {
		return m.Bands[0].Label
	}
	for _, b := range m.Bands[1:] {
		if score <= b.Upper {
			return b.Label
		}
	}
	return m.Bands[len(m.Bands)-1].Label
}

// BandLabels returns the band labels in ascending severity order.
func (m *Model) BandLabels() []string {
	labels := make([]string, len(m.Bands))
	for i, b := range m.Bands {
		labels[i] = b.Label
	}
	return labels
}
