package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/feature"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/patterns"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/plan"
)

const (
	topDistrictsN = 15
	hotspotTableN = 10
)

// RenderExecutive renders the Markdown executive report for one scored run.
func RenderExecutive(res *pipeline.Results, m *model.Model) string {
	var b strings.Builder

	b.WriteString("# Citizen Exclusion Risk Analysis\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", res.Meta.GeneratedAt.Format("2 January 2006"))
	fmt.Fprintf(&b, "- Run token: `%s`\n", res.Meta.RunToken)
	fmt.Fprintf(&b, "- Model: %s (digest `%s`)\n", m.Name, shortHash(res.Meta.ModelDigest))
	fmt.Fprintf(&b, "- Inputs fingerprint: `%s`\n\n", shortHash(res.Meta.InputsFingerprint))

	writeNationalSummary(&b, res)
	writeRiskDistribution(&b, res, m)
	writeTopDistricts(&b, res)
	writeHiddenPatterns(&b, res)
	writeInterventions(&b, res)
	writeEconomicImpact(&b, res)
	writeMethodology(&b, m)

	return b.String()
}

func writeNationalSummary(b *strings.Builder, res *pipeline.Results) {
	b.WriteString("## National Summary\n\n")

	states := make(map[string]bool)
	for _, s := range res.Scores {
		states[s.State] = true
	}
	fmt.Fprintf(b, "- Districts scored: %d across %d states\n", res.Summary.TotalDistricts, len(states))
	if first, last, ok := frameSpan(res.Frame); ok {
		fmt.Fprintf(b, "- Extract window: %s to %s\n", first, last)
	}
	for _, in := range res.Inputs {
		english.Fprintf(b, "- %s extract: %d rows from %d files", titleCase(string(in.Kind)), in.Rows, in.Files)
		if in.Skipped > 0 {
			fmt.Fprintf(b, " (%d skipped)", in.Skipped)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "- Average CERS: %.2f\n\n", res.Summary.AvgCERS)
}

func writeRiskDistribution(b *strings.Builder, res *pipeline.Results, m *model.Model) {
	b.WriteString("## Risk Distribution\n\n")
	b.WriteString("| Band | Districts | Share |\n|---|---:|---:|\n")

	labels := m.BandLabels()
	for i := len(labels) - 1; i >= 0; i-- {
		n := res.Summary.BandCounts[labels[i]]
		share := 0.0
		if res.Summary.TotalDistricts > 0 {
			share = float64(n) / float64(res.Summary.TotalDistricts) * 100
		}
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", labels[i], n, share)
	}
	b.WriteString("\n")
}

func writeTopDistricts(b *strings.Builder, res *pipeline.Results) {
	b.WriteString("## Top Districts by Risk\n\n")
	if len(res.Scores) == 0 {
		b.WriteString("No districts were scored in this run.\n\n")
		return
	}

	b.WriteString("| # | District | State | CERS | Band | Gap | Migration | Volatility | Volume |\n")
	b.WriteString("|--:|---|---|--:|---|--:|--:|--:|--:|\n")
	top := res.Scores
	if len(top) > topDistrictsN {
		top = top[:topDistrictsN]
	}
	for i, s := range top {
		fmt.Fprintf(b, "| %d | %s | %s | %.2f | %s | %.1f | %.1f | %.1f | %.1f |\n",
			i+1, s.District, s.State, s.CERS, s.Band,
			s.GapRisk, s.MigrationRisk, s.VolatilityRisk, s.VolumePressureRisk)
	}
	b.WriteString("\n")
}

func writeHiddenPatterns(b *strings.Builder, res *pipeline.Results) {
	f := res.Patterns
	b.WriteString("## Hidden Patterns\n\n")

	fmt.Fprintf(b, "- Harvest months average %.1f%% biometric completion against %.1f%% in the rest of the year.\n",
		f.HarvestAvgBioCompletion, f.NonHarvestAvgBioCompletion)
	if f.QuarterEnd.Significant {
		fmt.Fprintf(b, "- Quarter-end completion shift is statistically significant (t = %.2f, p = %.4f).\n",
			f.QuarterEnd.TStatistic, f.QuarterEnd.PValue)
	} else {
		fmt.Fprintf(b, "- Quarter-end completion shift is not significant (t = %.2f, p = %.4f).\n",
			f.QuarterEnd.TStatistic, f.QuarterEnd.PValue)
	}
	fmt.Fprintf(b, "- %d districts combine a youth update anomaly above %.3f with biometric completion under %.1f%%.\n",
		f.HotspotCount, f.AnomalyThreshold, f.CompletionThreshold)
	if peak, trough, ok := seasonalExtremes(f.Seasonal); ok {
		fmt.Fprintf(b, "- Completion peaks in %s (%.1f%%) and bottoms out in %s (%.1f%%).\n",
			time.Month(peak.Month), peak.AvgBioCompletion, time.Month(trough.Month), trough.AvgBioCompletion)
	}
	b.WriteString("\n")

	if len(f.Hotspots) == 0 {
		return
	}
	b.WriteString("Likely migration corridors, youth enrolled here but not updating:\n\n")
	b.WriteString("| District | State | Youth Gap | Bio Completion |\n|---|---|--:|--:|\n")
	hot := f.Hotspots
	if len(hot) > hotspotTableN {
		hot = hot[:hotspotTableN]
	}
	for _, h := range hot {
		fmt.Fprintf(b, "| %s | %s | %.3f | %.1f%% |\n", h.District, h.State, h.YouthUpdateAnomaly, h.AvgBioCompletion)
	}
	b.WriteString("\n")
}

func writeInterventions(b *strings.Builder, res *pipeline.Results) {
	p := res.Plan
	b.WriteString("## Interventions\n\n")

	b.WriteString("### Mobile Van Deployment\n\n")
	fmt.Fprintf(b, "- Districts to cover: %d\n", p.Vans.DistrictsToCover)
	fmt.Fprintf(b, "- Vans needed: %d\n", p.Vans.VansNeeded)
	english.Fprintf(b, "- Population reached: %d\n", p.Vans.PopulationReached)
	fmt.Fprintf(b, "- Services: %s\n", strings.Join(plan.VanServices, "; "))
	fmt.Fprintf(b, "- Timing: %s\n", plan.VanTiming)
	fmt.Fprintf(b, "- Duration: %s\n\n", plan.VanDuration)
	if len(p.Vans.Routes) > 0 {
		b.WriteString("| State | Districts | Avg CERS | Population |\n|---|--:|--:|--:|\n")
		for _, r := range p.Vans.Routes {
			english.Fprintf(b, "| %s | %d | %.1f | %d |\n", r.State, len(r.Districts), r.AvgCERS, r.AffectedPopulation)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Biometric Refresh Alerts\n\n")
	if p.Alerts.LatestDay != (dataset.Date{}) {
		fmt.Fprintf(b, "- Activity window: %s to %s\n", p.Alerts.CutoffDay, p.Alerts.LatestDay)
	}
	fmt.Fprintf(b, "- Districts flagged: %d\n", len(p.Alerts.Districts))
	english.Fprintf(b, "- Estimated beneficiaries: %d\n", p.Alerts.EstimatedBeneficiaries)
	fmt.Fprintf(b, "- Campaign cost: %s\n", rupees(p.Alerts.CampaignCost))
	fmt.Fprintf(b, "- Message: %q\n\n", plan.AlertMessageTemplate)

	b.WriteString("### Capacity Building\n\n")
	fmt.Fprintf(b, "- Target districts: %d\n", p.Capacity.TargetDistricts)
	fmt.Fprintf(b, "- Centers to upgrade: %d\n", p.Capacity.CentersToUpgrade)
	fmt.Fprintf(b, "- Measures: %s\n\n", strings.Join(plan.CapacityMeasures, "; "))

	b.WriteString("### Seasonal Windows\n\n")
	fmt.Fprintf(b, "- %s\n", plan.HarvestStrategy)
	fmt.Fprintf(b, "- %s\n", plan.QuarterEndStrategy)
	fmt.Fprintf(b, "- %s\n\n", plan.FestivalPrep)
}

func writeEconomicImpact(b *strings.Builder, res *pipeline.Results) {
	e := res.Economics
	b.WriteString("## Economic Impact\n\n")

	english.Fprintf(b, "- Citizens at exclusion risk in priority districts: %d of %d reached\n",
		e.CitizensAtRisk, e.AffectedPopulation)
	fmt.Fprintf(b, "- Annual cost of exclusion at current rates: %s\n\n", rupees(e.AnnualExclusionCost))

	b.WriteString("Program costs, annual:\n\n")
	fmt.Fprintf(b, "- Mobile vans: %s\n", rupees(e.VanAnnualCost))
	fmt.Fprintf(b, "- Proactive alerts: %s\n", rupees(e.AlertCost))
	fmt.Fprintf(b, "- Capacity building: %s\n", rupees(e.CapacityCost))
	fmt.Fprintf(b, "- Total: %s\n\n", rupees(e.TotalInterventionCost))

	b.WriteString("Projected savings, annual:\n\n")
	fmt.Fprintf(b, "- Exclusion prevention: %s\n", rupees(e.ExclusionPreventionSavings))
	fmt.Fprintf(b, "- Benefit delivery efficiency: %s\n", rupees(e.EfficiencySavings))
	fmt.Fprintf(b, "- Administrative: %s\n", rupees(e.AdministrativeSavings))
	fmt.Fprintf(b, "- Total: %s\n\n", rupees(e.TotalAnnualSavings))

	b.WriteString("Return:\n\n")
	fmt.Fprintf(b, "- Net annual benefit: %s\n", rupees(e.NetBenefit))
	fmt.Fprintf(b, "- ROI: %.1f%%\n", e.ROI)
	if e.HasPayback {
		fmt.Fprintf(b, "- Payback period: %.1f months\n", e.PaybackMonths)
	} else {
		b.WriteString("- Payback period: not reached\n")
	}
	english.Fprintf(b, "- Citizens helped: %.0f\n", e.CitizensHelped)
	english.Fprintf(b, "- Families impacted: %d\n\n", e.FamiliesImpacted)
}

func writeMethodology(b *strings.Builder, m *model.Model) {
	b.WriteString("## Methodology\n\n")

	w := m.Weights
	fmt.Fprintf(b, "- CERS is a weighted composite of four 0-100 component scores: completion gap %.0f%%, youth migration %.0f%%, volatility %.0f%%, volume pressure %.0f%%.\n",
		w.Gap*100, w.Migration*100, w.Volatility*100, w.VolumePressure*100)

	parts := make([]string, 0, len(m.Bands))
	lower := 0.0
	for _, bd := range m.Bands {
		parts = append(parts, fmt.Sprintf("%s (%.0f-%.0f]", bd.Label, lower, bd.Upper))
		lower = bd.Upper
	}
	fmt.Fprintf(b, "- Risk bands: %s; a score of exactly 0 sits in the lowest band.\n", strings.Join(parts, ", "))
	fmt.Fprintf(b, "- Quarter-end shift tested with a pooled two-sample t-test at p < %.2f.\n", m.Thresholds.Significance)
	fmt.Fprintf(b, "- Migration hotspots: youth anomaly above the P%.0f district quantile with completion below the P%.0f quantile and at least %d enrolments.\n",
		m.Thresholds.AnomalyQuantile*100, m.Thresholds.CompletionQuantile*100, m.Thresholds.MinEnrolments)
	b.WriteString("- Full scores, patterns, and run metadata are in `insights.json`.\n")
}

func frameSpan(rows []feature.Row) (first, last dataset.Date, ok bool) {
	if len(rows) == 0 {
		return dataset.Date{}, dataset.Date{}, false
	}
	first, last = rows[0].Day, rows[0].Day
	for _, r := range rows[1:] {
		if r.Day.Before(first) {
			first = r.Day
		}
		if last.Before(r.Day) {
			last = r.Day
		}
	}
	return first, last, true
}

func seasonalExtremes(cells []patterns.SeasonalCell) (peak, trough patterns.SeasonalCell, ok bool) {
	if len(cells) == 0 {
		return patterns.SeasonalCell{}, patterns.SeasonalCell{}, false
	}
	peak, trough = cells[0], cells[0]
	for _, c := range cells[1:] {
		if c.AvgBioCompletion > peak.AvgBioCompletion {
			peak = c
		}
		if c.AvgBioCompletion < trough.AvgBioCompletion {
			trough = c
		}
	}
	return peak, trough, true
}
