package report

import (
	"time"

	"github.com/roach88/enrolscan/internal/artifact"
	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/economics"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/patterns"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/plan"
	"github.com/roach88/enrolscan/internal/profiling"
	"github.com/roach88/enrolscan/internal/score"
	"github.com/roach88/enrolscan/internal/table"
)

// RunJSON renders insights.json: the full scored output with run metadata,
// canonically encoded and indented.
func RunJSON(res *pipeline.Results, m *model.Model) ([]byte, error) {
	scores := make(artifact.Array, 0, len(res.Scores))
	for i := range res.Scores {
		scores = append(scores, riskValue(&res.Scores[i]))
	}

	inputs := make(artifact.Array, 0, len(res.Inputs))
	for _, in := range res.Inputs {
		inputs = append(inputs, artifact.Object{
			"kind":    artifact.String(string(in.Kind)),
			"rows":    artifact.Int(in.Rows),
			"files":   artifact.Int(in.Files),
			"skipped": artifact.Int(in.Skipped),
		})
	}

	root := artifact.Object{
		"run": artifact.Object{
			"token":              artifact.String(res.Meta.RunToken),
			"generated_at":       artifact.String(res.Meta.GeneratedAt.Format(time.RFC3339)),
			"inputs_fingerprint": artifact.String(res.Meta.InputsFingerprint),
			"model_digest":       artifact.String(res.Meta.ModelDigest),
			"model":              artifact.String(m.Name),
		},
		"inputs":    inputs,
		"summary":   summaryValue(&res.Summary),
		"scores":    scores,
		"patterns":  findingsValue(&res.Patterns),
		"plan":      planValue(&res.Plan),
		"economics": impactValue(&res.Economics),
	}
	return artifact.MarshalIndented(root)
}

func summaryValue(s *score.Summary) artifact.Value {
	counts := artifact.Object{}
	for label, n := range s.BandCounts {
		counts[label] = artifact.Int(n)
	}
	return artifact.Object{
		"total_districts": artifact.Int(s.TotalDistricts),
		"avg_cers":        artifact.Float(s.AvgCERS),
		"band_counts":     counts,
	}
}

func riskValue(r *score.DistrictRisk) artifact.Value {
	return artifact.Object{
		"state":                artifact.String(r.State),
		"district":             artifact.String(r.District),
		"avg_bio_completion":   artifact.Float(r.AvgBioCompletion),
		"avg_demo_completion":  artifact.Float(r.AvgDemoCompletion),
		"avg_bio_gap":          artifact.Float(r.AvgBioGap),
		"bio_gap_volatility":   artifact.Float(r.BioGapVolatility),
		"youth_ratio_enrol":    artifact.Float(r.YouthRatioEnrol),
		"youth_ratio_bio":      artifact.Float(r.YouthRatioBio),
		"total_enrolments":     artifact.Int(r.TotalEnrolments),
		"gap_risk":             artifact.Float(r.GapRisk),
		"migration_risk":       artifact.Float(r.MigrationRisk),
		"volatility_risk":      artifact.Float(r.VolatilityRisk),
		"volume_pressure_risk": artifact.Float(r.VolumePressureRisk),
		"cers":                 artifact.Float(r.CERS),
		"band":                 artifact.String(r.Band),
	}
}

func findingsValue(f *patterns.Findings) artifact.Value {
	seasonal := make(artifact.Array, 0, len(f.Seasonal))
	for _, c := range f.Seasonal {
		seasonal = append(seasonal, artifact.Object{
			"month":               artifact.Int(c.Month),
			"is_harvest":          artifact.Bool(c.IsHarvest),
			"avg_bio_completion":  artifact.Float(c.AvgBioCompletion),
			"avg_demo_completion": artifact.Float(c.AvgDemoCompletion),
			"avg_youth_ratio_bio": artifact.Float(c.AvgYouthRatioBio),
			"observations":        artifact.Int(c.Observations),
		})
	}

	districts := make(artifact.Array, 0, len(f.Districts))
	for i := range f.Districts {
		districts = append(districts, districtPatternValue(&f.Districts[i]))
	}
	hotspots := make(artifact.Array, 0, len(f.Hotspots))
	for i := range f.Hotspots {
		hotspots = append(hotspots, districtPatternValue(&f.Hotspots[i]))
	}

	return artifact.Object{
		"seasonal":                       seasonal,
		"districts":                      districts,
		"hotspots":                       hotspots,
		"hotspot_count":                  artifact.Int(f.HotspotCount),
		"anomaly_threshold":              artifact.Float(f.AnomalyThreshold),
		"completion_threshold":           artifact.Float(f.CompletionThreshold),
		"quarter_end":                    quarterEndValue(f.QuarterEnd),
		"harvest_avg_bio_completion":     artifact.Float(f.HarvestAvgBioCompletion),
		"non_harvest_avg_bio_completion": artifact.Float(f.NonHarvestAvgBioCompletion),
	}
}

func districtPatternValue(d *patterns.DistrictPattern) artifact.Value {
	return artifact.Object{
		"state":                artifact.String(d.State),
		"district":             artifact.String(d.District),
		"youth_ratio_enrol":    artifact.Float(d.YouthRatioEnrol),
		"youth_ratio_bio":      artifact.Float(d.YouthRatioBio),
		"avg_bio_completion":   artifact.Float(d.AvgBioCompletion),
		"avg_demo_completion":  artifact.Float(d.AvgDemoCompletion),
		"avg_bio_gap":          artifact.Float(d.AvgBioGap),
		"total_enrolments":     artifact.Int(d.TotalEnrolments),
		"youth_update_anomaly": artifact.Float(d.YouthUpdateAnomaly),
	}
}

func quarterEndValue(q patterns.QuarterEndEffect) artifact.Value {
	return artifact.Object{
		"t_statistic": artifact.Float(q.TStatistic),
		"p_value":     artifact.Float(q.PValue),
		"significant": artifact.Bool(q.Significant),
	}
}

func planValue(p *plan.Plan) artifact.Value {
	routes := make(artifact.Array, 0, len(p.Vans.Routes))
	for _, r := range p.Vans.Routes {
		routes = append(routes, artifact.Object{
			"state":               artifact.String(r.State),
			"districts":           stringsValue(r.Districts),
			"avg_cers":            artifact.Float(r.AvgCERS),
			"affected_population": artifact.Int(r.AffectedPopulation),
		})
	}

	alertDistricts := make(artifact.Array, 0, len(p.Alerts.Districts))
	for _, d := range p.Alerts.Districts {
		alertDistricts = append(alertDistricts, artifact.Object{
			"state":               artifact.String(d.State),
			"district":            artifact.String(d.District),
			"avg_bio_completion":  artifact.Float(d.AvgBioCompletion),
			"avg_demo_completion": artifact.Float(d.AvgDemoCompletion),
			"recent_enrolments":   artifact.Int(d.RecentEnrolments),
		})
	}

	sites := make(artifact.Array, 0, len(p.Capacity.PrioritySites))
	for _, s := range p.Capacity.PrioritySites {
		sites = append(sites, artifact.Object{
			"state":            artifact.String(s.State),
			"district":         artifact.String(s.District),
			"volatility_risk":  artifact.Float(s.VolatilityRisk),
			"total_enrolments": artifact.Int(s.TotalEnrolments),
		})
	}

	return artifact.Object{
		"vans": artifact.Object{
			"routes":             routes,
			"districts_to_cover": artifact.Int(p.Vans.DistrictsToCover),
			"population_reached": artifact.Int(p.Vans.PopulationReached),
			"vans_needed":        artifact.Int(p.Vans.VansNeeded),
			"services":           stringsValue(plan.VanServices),
			"timing":             artifact.String(plan.VanTiming),
			"target":             artifact.String(plan.VanTarget),
			"duration":           artifact.String(plan.VanDuration),
		},
		"alerts": artifact.Object{
			"latest_day":              dateValue(p.Alerts.LatestDay),
			"cutoff_day":              dateValue(p.Alerts.CutoffDay),
			"districts":               alertDistricts,
			"estimated_beneficiaries": artifact.Int(p.Alerts.EstimatedBeneficiaries),
			"campaign_cost":           artifact.Float(p.Alerts.CampaignCost),
			"message":                 artifact.String(plan.AlertMessageTemplate),
		},
		"capacity": artifact.Object{
			"target_districts":   artifact.Int(p.Capacity.TargetDistricts),
			"priority_sites":     sites,
			"centers_to_upgrade": artifact.Int(p.Capacity.CentersToUpgrade),
			"measures":           stringsValue(plan.CapacityMeasures),
		},
		"seasonal_strategy": artifact.Object{
			"harvest":     artifact.String(plan.HarvestStrategy),
			"quarter_end": artifact.String(plan.QuarterEndStrategy),
			"festival":    artifact.String(plan.FestivalPrep),
		},
	}
}

func impactValue(e *economics.Impact) artifact.Value {
	var payback artifact.Value = artifact.Null{}
	if e.HasPayback {
		payback = artifact.Float(e.PaybackMonths)
	}
	return artifact.Object{
		"affected_population":          artifact.Int(e.AffectedPopulation),
		"citizens_at_risk":             artifact.Int(e.CitizensAtRisk),
		"annual_exclusion_cost":        artifact.Float(e.AnnualExclusionCost),
		"van_annual_cost":              artifact.Float(e.VanAnnualCost),
		"alert_cost":                   artifact.Float(e.AlertCost),
		"capacity_cost":                artifact.Float(e.CapacityCost),
		"total_intervention_cost":      artifact.Float(e.TotalInterventionCost),
		"citizens_served_by_vans":      artifact.Float(e.CitizensServedByVans),
		"citizens_helped":              artifact.Float(e.CitizensHelped),
		"exclusion_prevention_savings": artifact.Float(e.ExclusionPreventionSavings),
		"efficiency_savings":           artifact.Float(e.EfficiencySavings),
		"administrative_savings":       artifact.Float(e.AdministrativeSavings),
		"total_annual_savings":         artifact.Float(e.TotalAnnualSavings),
		"net_benefit":                  artifact.Float(e.NetBenefit),
		"roi":                          artifact.Float(e.ROI),
		"payback_months":               payback,
		"families_impacted":            artifact.Int(e.FamiliesImpacted),
	}
}

// SchemaReportJSON renders schema_report.json for one profiled dataset.
func SchemaReportJSON(p *profiling.Profile) ([]byte, error) {
	cols := make(artifact.Array, 0, len(p.Schema.Columns))
	for _, c := range p.Schema.Columns {
		cols = append(cols, artifact.Object{
			"name":         artifact.String(c.Name),
			"kind":         artifact.String(c.Kind),
			"missing_rate": artifact.Float(c.MissingRate),
			"distinct":     artifact.Int(c.Distinct),
			"samples":      stringsValue(c.Samples),
		})
	}
	root := artifact.Object{
		"rows":         artifact.Int(p.Schema.Rows),
		"cols":         artifact.Int(p.Schema.Cols),
		"source_files": stringsValue(p.Schema.SourceFiles),
		"sample_files": stringsValue(p.Schema.SampleFiles),
		"columns":      cols,
	}
	return artifact.MarshalIndented(root)
}

// ProfileJSON renders profile.json for one profiled dataset.
func ProfileJSON(p *profiling.Profile) ([]byte, error) {
	root := artifact.Object{
		"name":    artifact.String(p.Name),
		"metrics": metricsValue(&p.Metrics),
		"roles": artifact.Object{
			"numeric":     stringsValue(p.Roles.Numeric),
			"datetime":    stringsValue(p.Roles.Datetime),
			"categorical": stringsValue(p.Roles.Categorical),
			"labels":      stringsValue(p.Roles.Labels),
			"geo":         stringsValue(p.Roles.Geo),
		},
		"outcome": outcomeValue(p.Outcome),
		"daily":   dailyVolumeValue(p.Daily),
	}
	return artifact.MarshalIndented(root)
}

func metricsValue(m *profiling.Metrics) artifact.Value {
	var rate artifact.Value = artifact.Null{}
	if m.HasSuccess {
		rate = artifact.Float(m.SuccessRate)
	}
	topGeo := make(artifact.Array, 0, len(m.TopGeo))
	for _, g := range m.TopGeo {
		topGeo = append(topGeo, artifact.Object{
			"column": artifact.String(g.Column),
			"top":    valueCountsValue(g.Top),
		})
	}
	return artifact.Object{
		"rows":         artifact.Int(m.Rows),
		"cols":         artifact.Int(m.Cols),
		"numeric":      artifact.Int(m.Numeric),
		"categorical":  artifact.Int(m.Categorical),
		"datetime":     artifact.Int(m.Datetime),
		"missing_rate": artifact.Float(m.MissingRate),
		"has_label":    artifact.Bool(m.HasLabel),
		"success_rate": rate,
		"top_geo":      topGeo,
	}
}

func outcomeValue(o *profiling.Outcome) artifact.Value {
	if o == nil {
		return artifact.Null{}
	}
	var rate artifact.Value = artifact.Null{}
	if o.HasRate {
		rate = artifact.Float(o.SuccessRate)
	}
	byCategory := make(artifact.Array, 0, len(o.ByCategory))
	for _, c := range o.ByCategory {
		rates := make(artifact.Array, 0, len(c.Rates))
		for _, r := range c.Rates {
			rates = append(rates, artifact.Object{
				"value": artifact.String(r.Value),
				"rate":  artifact.Float(r.Rate),
				"count": artifact.Int(r.Count),
			})
		}
		byCategory = append(byCategory, artifact.Object{
			"column": artifact.String(c.Column),
			"rates":  rates,
		})
	}
	return artifact.Object{
		"column":       artifact.String(o.Column),
		"binary":       artifact.Bool(o.Binary),
		"mapped_share": artifact.Float(o.MappedShare),
		"success_rate": rate,
		"distribution": valueCountsValue(o.Distribution),
		"by_category":  byCategory,
	}
}

func valueCountsValue(counts []table.ValueCount) artifact.Value {
	arr := make(artifact.Array, 0, len(counts))
	for _, c := range counts {
		arr = append(arr, artifact.Object{
			"value": artifact.String(c.Value),
			"count": artifact.Int(c.Count),
		})
	}
	return arr
}

func dailyVolumeValue(days []table.DayCount) artifact.Value {
	arr := make(artifact.Array, 0, len(days))
	for _, d := range days {
		arr = append(arr, artifact.Object{
			"date":  artifact.String(d.Day.String()),
			"count": artifact.Int(d.Count),
		})
	}
	return arr
}

func dateValue(d dataset.Date) artifact.Value {
	if d == (dataset.Date{}) {
		return artifact.Null{}
	}
	return artifact.String(d.String())
}
