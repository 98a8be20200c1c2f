// Package plan turns scored districts into an intervention program: mobile
// van routes through the riskiest states, a biometric refresh alert
// campaign over recently active low-completion districts, and a capacity
// upgrade list for the most volatile high-volume districts.
package plan

import (
	"slices"
	"strings"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/feature"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/score"
)

const (
	routeTopN    = 10
	capacityTopN = 20
)

// Program guidance carried verbatim into the report artifacts.
const (
	VanTiming   = "Avoid harvest months (April, May, October, November)"
	VanTarget   = "Districts with CERS above the High band floor"
	VanDuration = "2-week camps per district"

	AlertMessageTemplate = "Your Aadhaar biometric update is due. Visit nearest center or use mobile van service. Free and mandatory for benefit continuity."

	HarvestStrategy    = "Deploy 50% more resources in non-harvest months (Dec-Mar, Jun-Sep)"
	QuarterEndStrategy = "Staff temporary centers in last 2 weeks of quarters"
	FestivalPrep       = "Mobile camps 1 month before major festivals (Diwali, Holi, Eid)"
)

// VanServices lists what a deployed van offers.
var VanServices = []string{"Biometric updates", "Demographic corrections", "New enrollments"}

// CapacityMeasures lists the upgrade package per priority site.
var CapacityMeasures = []string{
	"Additional enrollment kiosks",
	"Operator training on biometric capture",
	"Queue management systems",
	"Extended operating hours during peak seasons",
}

// StateRoute is one state's van route: its priority districts in score
// order with the state-level aggregates used to rank states.
type StateRoute struct {
	State              string
	Districts          []string
	AvgCERS            float64
	AffectedPopulation int64
}

// VanDeployment is the mobile van intervention.
type VanDeployment struct {
	Routes            []StateRoute
	DistrictsToCover  int
	PopulationReached int64
	VansNeeded        int
}

// AlertDistrict is one district eligible for the refresh alert campaign.
type AlertDistrict struct {
	State             string
	District          string
	AvgBioCompletion  float64
	AvgDemoCompletion float64
	RecentEnrolments  int64
}

// AlertCampaign is the SMS refresh alert intervention over the recent
// activity window.
type AlertCampaign struct {
	LatestDay dataset.Date
	CutoffDay dataset.Date

	Districts              []AlertDistrict
	EstimatedBeneficiaries int64
	CampaignCost           float64
}

// CapacitySite is one district marked for infrastructure upgrades.
type CapacitySite struct {
	State           string
	District        string
	VolatilityRisk  float64
	TotalEnrolments int64
}

// CapacityProgram is the center upgrade intervention.
type CapacityProgram struct {
	TargetDistricts  int
	PrioritySites    []CapacitySite
	CentersToUpgrade int
}

// Plan is the complete intervention program for one run.
type Plan struct {
	Vans     VanDeployment
	Alerts   AlertCampaign
	Capacity CapacityProgram
}

// Build derives the intervention program from the scored districts and the
// engineered rows. risks must already be in CERS-descending order, the
// order Compute returns.
func Build(risks []score.DistrictRisk, rows []feature.Row, m *model.Model) Plan {
	return Plan{
		Vans:     buildVanDeployment(risks, m),
		Alerts:   buildAlertCampaign(rows, m),
		Capacity: buildCapacityProgram(risks, m),
	}
}

// priorityLabels returns the bands eligible for van deployment: the top two
// of the ladder, or every band when the ladder is shorter.
func priorityLabels(m *model.Model) map[string]bool {
	labels := m.BandLabels()
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

func buildVanDeployment(risks []score.DistrictRisk, m *model.Model) VanDeployment {
	priority := priorityLabels(m)

	type routeAcc struct {
		state      string
		districts  []string
		sumCERS    float64
		n          int
		population int64
	}

	accs := make(map[string]*routeAcc)
	order := make([]string, 0)

	var deployment VanDeployment
	for _, r := range risks {
		if !priority[r.Band] {
			continue
		}
		deployment.DistrictsToCover++
		deployment.PopulationReached += r.TotalEnrolments

		acc := accs[r.State]
		if acc == nil {
			acc = &routeAcc{state: r.State}
			accs[r.State] = acc
			order = append(order, r.State)
		}
		acc.districts = append(acc.districts, r.District)
		acc.sumCERS += r.CERS
		acc.n++
		acc.population += r.TotalEnrolments
	}

	routes := make([]StateRoute, 0, len(order))
	for _, state := range order {
		acc := accs[state]
		routes = append(routes, StateRoute{
			State:              state,
			Districts:          acc.districts,
			AvgCERS:            acc.sumCERS / float64(acc.n),
			AffectedPopulation: acc.population,
		})
	}
	slices.SortFunc(routes, func(a, b StateRoute) int {
		switch {
		case a.AvgCERS > b.AvgCERS:
			return -1
		case a.AvgCERS < b.AvgCERS:
			return 1
		}
		return strings.Compare(a.State, b.State)
	})
	if len(routes) > routeTopN {
		routes = routes[:routeTopN]
	}
	deployment.Routes = routes
	deployment.VansNeeded = deployment.DistrictsToCover / m.Intervention.DistrictsPerVan
	return deployment
}

func buildAlertCampaign(rows []feature.Row, m *model.Model) AlertCampaign {
	if len(rows) == 0 {
		return AlertCampaign{}
	}

	latest := rows[0].Day
	for _, r := range rows[1:] {
		if latest.Before(r.Day) {
			latest = r.Day
		}
	}
	cutoff := latest.AddDays(-m.Thresholds.RecentWindowDays)

	type alertAcc struct {
		state      string
		district   string
		n          int
		sumBio     float64
		sumDemo    float64
		enrolments int64
	}

	accs := make(map[[2]string]*alertAcc)
	for _, r := range rows {
		if r.Day.Before(cutoff) {
			continue
		}
		key := [2]string{r.State, r.District}
		acc := accs[key]
		if acc == nil {
			acc = &alertAcc{state: r.State, district: r.District}
			accs[key] = acc
		}
		acc.n++
		acc.sumBio += r.BioCompletionRate
		acc.sumDemo += r.DemoCompletionRate
		acc.enrolments += r.EnrolCount
	}

	campaign := AlertCampaign{LatestDay: latest, CutoffDay: cutoff}
	var recentTotal int64
	for _, acc := range accs {
		avgBio := acc.sumBio / float64(acc.n)
		if avgBio >= m.Intervention.AlertCompletionCutoff {
			continue
		}
		if acc.enrolments <= m.Intervention.AlertMinEnrolments {
			continue
		}
		campaign.Districts = append(campaign.Districts, AlertDistrict{
			State:             acc.state,
			District:          acc.district,
			AvgBioCompletion:  avgBio,
			AvgDemoCompletion: acc.sumDemo / float64(acc.n),
			RecentEnrolments:  acc.enrolments,
		})
		recentTotal += acc.enrolments
	}
	slices.SortFunc(campaign.Districts, func(a, b AlertDistrict) int {
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})

	responders := float64(recentTotal) * m.Intervention.ResponseRate
	campaign.EstimatedBeneficiaries = int64(responders)
	campaign.CampaignCost = responders * m.Intervention.SMSCost
	return campaign
}

func buildCapacityProgram(risks []score.DistrictRisk, m *model.Model) CapacityProgram {
	sites := make([]CapacitySite, 0)
	for _, r := range risks {
		if r.VolatilityRisk > m.Intervention.CapacityVolatilityCutoff {
			sites = append(sites, CapacitySite{
				State:           r.State,
				District:        r.District,
				VolatilityRisk:  r.VolatilityRisk,
				TotalEnrolments: r.TotalEnrolments,
			})
		}
	}
	slices.SortFunc(sites, func(a, b CapacitySite) int {
		switch {
		case a.TotalEnrolments > b.TotalEnrolments:
			return -1
		case a.TotalEnrolments < b.TotalEnrolments:
			return 1
		}
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})

	program := CapacityProgram{TargetDistricts: len(sites)}
	if len(sites) > capacityTopN {
		sites = sites[:capacityTopN]
	}
	program.PrioritySites = sites
	program.CentersToUpgrade = program.TargetDistricts * m.Intervention.CentersPerDistrict
	return program
}
