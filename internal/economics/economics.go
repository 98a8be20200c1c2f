// Package economics prices the intervention program: what exclusion costs
// today, what the program costs to run, and what it returns. All amounts
// are rupees per year unless named otherwise.
package economics

import (
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/plan"
)

// Impact is the cost-benefit assessment of one intervention program.
type Impact struct {
	// Exposure.
	AffectedPopulation  int64
	CitizensAtRisk      int64
	AnnualExclusionCost float64

	// Program costs.
	VanAnnualCost         float64
	AlertCost             float64
	CapacityCost          float64
	TotalInterventionCost float64

	// Reach. CitizensHelped is capped at the at-risk population; vans and
	// alerts cannot help people who were never at risk.
	CitizensServedByVans float64
	CitizensHelped       float64

	// Savings.
	ExclusionPreventionSavings float64
	EfficiencySavings          float64
	AdministrativeSavings      float64
	TotalAnnualSavings         float64

	// Returns. PaybackMonths is meaningful only when HasPayback is true;
	// a program with zero savings never pays back.
	NetBenefit       float64
	ROI              float64
	PaybackMonths    float64
	HasPayback       bool
	FamiliesImpacted int64
}

// Assess prices the program against the model's economic assumptions.
func Assess(p plan.Plan, m *model.Model) Impact {
	e := m.Economics

	impact := Impact{AffectedPopulation: p.Vans.PopulationReached}
	impact.CitizensAtRisk = int64(float64(impact.AffectedPopulation) * e.ExclusionRate)
	impact.AnnualExclusionCost = float64(impact.CitizensAtRisk) * e.CostPerExcludedCitizen

	impact.VanAnnualCost = float64(p.Vans.VansNeeded) * e.VanMonthlyCost * 12
	impact.AlertCost = p.Alerts.CampaignCost
	impact.CapacityCost = float64(p.Capacity.CentersToUpgrade) * e.CenterUpgradeCost
	impact.TotalInterventionCost = impact.VanAnnualCost + impact.AlertCost + impact.CapacityCost

	impact.CitizensServedByVans = float64(p.Vans.VansNeeded) *
		float64(e.CitizensPerVanPerDay) *
		float64(e.WorkingDaysPerMonth) * 12 * e.VanUtilization

	reach := impact.CitizensServedByVans + float64(p.Alerts.EstimatedBeneficiaries)
	atRisk := float64(impact.CitizensAtRisk)
	if reach < atRisk {
		impact.CitizensHelped = reach
	} else {
		impact.CitizensHelped = atRisk
	}

	impact.ExclusionPreventionSavings = impact.CitizensHelped * e.CostPerExcludedCitizen
	impact.EfficiencySavings = float64(impact.AffectedPopulation) * e.AnnualBenefit * e.EfficiencyGain
	impact.AdministrativeSavings = impact.CitizensHelped * e.ReapplicationShare * e.ReapplicationCost
	impact.TotalAnnualSavings = impact.ExclusionPreventionSavings +
		impact.EfficiencySavings +
		impact.AdministrativeSavings

	impact.NetBenefit = impact.TotalAnnualSavings - impact.TotalInterventionCost
	if impact.TotalInterventionCost > 0 {
		impact.ROI = impact.NetBenefit / impact.TotalInterventionCost * 100
	}
	if impact.TotalAnnualSavings > 0 {
		impact.PaybackMonths = impact.TotalInterventionCost / (impact.TotalAnnualSavings / 12)
		impact.HasPayback = true
	}
	impact.FamiliesImpacted = int64(impact.CitizensHelped * e.FamilySize)

	return impact
}
