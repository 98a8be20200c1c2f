package model

import "github.com/roach88/enrolscan/internal/artifact"

// Digest computes the content fingerprint of the model. Two models with the
// same parameters produce the same digest regardless of how they were loaded,
// so reports can state exactly which scoring configuration produced them.
func (m *Model) Digest() (string, error) {
	return artifact.Fingerprint(artifact.DomainModel, m.toValue())
}

// toValue builds the canonical encoding of the model. Field names follow the
// CUE schema so an operator can diff a digest mismatch against the source file.
func (m *Model) toValue() artifact.Value {
	bands := make(artifact.Array, 0, len(m.Bands))
	for _, b := range m.Bands {
		bands = append(bands, artifact.Object{
			"label": artifact.String(b.Label),
			"upper": artifact.Float(b.Upper),
		})
	}

	return artifact.Object{
		"name": artifact.String(m.Name),
		"weights": artifact.Object{
			"gap":             artifact.Float(m.Weights.Gap),
			"migration":       artifact.Float(m.Weights.Migration),
			"volatility":      artifact.Float(m.Weights.Volatility),
			"volume_pressure": artifact.Float(m.Weights.VolumePressure),
		},
		"bands": bands,
		"calendar": artifact.Object{
			"quarter_end_months": monthsValue(m.Calendar.QuarterEndMonths),
			"harvest_months":     monthsValue(m.Calendar.HarvestMonths),
			"festival_months":    monthsValue(m.Calendar.FestivalMonths),
		},
		"thresholds": artifact.Object{
			"anomaly_quantile":    artifact.Float(m.Thresholds.AnomalyQuantile),
			"completion_quantile": artifact.Float(m.Thresholds.CompletionQuantile),
			"min_enrolments":      artifact.Int(m.Thresholds.MinEnrolments),
			"significance":        artifact.Float(m.Thresholds.Significance),
			"recent_window_days":  artifact.Int(m.Thresholds.RecentWindowDays),
		},
		"intervention": artifact.Object{
			"districts_per_van":          artifact.Int(m.Intervention.DistrictsPerVan),
			"response_rate":              artifact.Float(m.Intervention.ResponseRate),
			"sms_cost":                   artifact.Float(m.Intervention.SMSCost),
			"alert_completion_cutoff":    artifact.Float(m.Intervention.AlertCompletionCutoff),
			"alert_min_enrolments":       artifact.Int(m.Intervention.AlertMinEnrolments),
			"capacity_volatility_cutoff": artifact.Float(m.Intervention.CapacityVolatilityCutoff),
			"centers_per_district":       artifact.Int(m.Intervention.CentersPerDistrict),
		},
		"economics": artifact.Object{
			"cost_per_excluded_citizen": artifact.Float(m.Economics.CostPerExcludedCitizen),
			"van_monthly_cost":          artifact.Float(m.Economics.VanMonthlyCost),
			"center_upgrade_cost":       artifact.Float(m.Economics.CenterUpgradeCost),
			"annual_benefit":            artifact.Float(m.Economics.AnnualBenefit),
			"reapplication_cost":        artifact.Float(m.Economics.ReapplicationCost),
			"citizens_per_van_per_day":  artifact.Int(m.Economics.CitizensPerVanPerDay),
			"working_days_per_month":    artifact.Int(m.Economics.WorkingDaysPerMonth),
			"van_utilization":           artifact.Float(m.Economics.VanUtilization),
			"efficiency_gain":           artifact.Float(m.Economics.EfficiencyGain),
			"exclusion_rate":            artifact.Float(m.Economics.ExclusionRate),
			"reapplication_share":       artifact.Float(m.Economics.ReapplicationShare),
			"family_size":               artifact.Float(m.Economics.FamilySize),
		},
	}
}

func monthsValue(months []int) artifact.Array {
	arr := make(artifact.Array, 0, len(months))
	for _, m := range months {
		arr = append(arr, artifact.Int(m))
	}
	return arr
}
