package report

import (
	"fmt"
	"strings"

	"github.com/roach88/enrolscan/internal/artifact"
	"github.com/roach88/enrolscan/internal/insight"
)

const underRepresentedN = 10

// RenderInsights renders INSIGHTS.md from the per-dataset profiles, in the
// order they were collected.
func RenderInsights(profiles []insight.DatasetProfile) string {
	var b strings.Builder

	b.WriteString("# National Insights: Aadhaar Enrolment and Update Extracts\n\n")

	writeInsightSummary(&b, profiles)
	writeShareGaps(&b, profiles)
	writeHotspots(&b, profiles)
	writeThroughput(&b, profiles)
	writeDataQuality(&b, profiles)
	writeRecommendations(&b)

	return b.String()
}

func writeInsightSummary(b *strings.Builder, profiles []insight.DatasetProfile) {
	b.WriteString("## Executive Summary\n\n")

	total := 0
	for _, p := range profiles {
		total += p.KPIs.Rows
	}
	english.Fprintf(b, "- Total records analyzed: %d\n", total)
	for _, p := range profiles {
		english.Fprintf(b, "- %s: %d rows, missing rate %s\n", titleCase(p.Name), p.KPIs.Rows, pct1(p.KPIs.MissingRate))
	}
	b.WriteString("\n")
}

// writeShareGaps compares each dataset's state shares against enrolment.
// The comparison only makes sense when every collected dataset detected a
// state column; otherwise the section says so and moves on.
func writeShareGaps(b *strings.Builder, profiles []insight.DatasetProfile) {
	b.WriteString("## Coverage & Representation Gaps by State\n\n")

	var enrolment *insight.DatasetProfile
	allShared := len(profiles) > 0
	for i := range profiles {
		if len(profiles[i].StateShares) == 0 {
			allShared = false
		}
		if profiles[i].Name == "enrolment" {
			enrolment = &profiles[i]
		}
	}
	if !allShared || enrolment == nil {
		b.WriteString("- State column not detected consistently; skipping share comparison.\n\n")
		return
	}

	for i := range profiles {
		p := &profiles[i]
		if p.Name == enrolment.Name {
			continue
		}
		fmt.Fprintf(b, "### Under-represented in %s (vs Enrolment)\n\n", titleCase(p.Name))
		worst := insight.UnderRepresented(enrolment.StateShares, p.StateShares, underRepresentedN)
		for _, d := range worst {
			fmt.Fprintf(b, "- %s: %s vs %s (Δ %s)\n", d.State, pct2(d.Share), pct2(d.EnrolmentShare), pct2(d.Delta))
		}
		b.WriteString("\n")
	}
}

func writeHotspots(b *strings.Builder, profiles []insight.DatasetProfile) {
	b.WriteString("## Hotspot States & Districts\n\n")

	for _, p := range profiles {
		fmt.Fprintf(b, "### %s\n\n", titleCase(p.Name))
		if len(p.StateShares) == 0 {
			b.WriteString("- State breakdown unavailable.\n\n")
			continue
		}
		b.WriteString("- Top states by volume share:\n")
		top := p.StateShares
		if len(top) > underRepresentedN {
			top = top[:underRepresentedN]
		}
		for _, s := range top {
			fmt.Fprintf(b, "  - %s: %s\n", s.State, pct2(s.Share))
		}
		b.WriteString("\n")
	}
}

func writeThroughput(b *strings.Builder, profiles []insight.DatasetProfile) {
	b.WriteString("## Throughput & Volatility (Daily)\n\n")

	for i := range profiles {
		p := &profiles[i]
		vol, ok := p.Volatility()
		if !ok {
			fmt.Fprintf(b, "- %s: date column not available; skipping.\n", titleCase(p.Name))
			continue
		}
		first := p.DailyVolume[0].Day
		last := p.DailyVolume[len(p.DailyVolume)-1].Day
		fmt.Fprintf(b, "- %s: volatility (std/mean) = %.2f, range %s to %s\n", titleCase(p.Name), vol, first, last)
	}
	b.WriteString("\n")
}

func writeDataQuality(b *strings.Builder, profiles []insight.DatasetProfile) {
	b.WriteString("## Data Quality Priorities\n\n")

	for _, p := range profiles {
		fmt.Fprintf(b, "- %s: missing rate %s, columns=%d\n", titleCase(p.Name), pct1(p.KPIs.MissingRate), p.KPIs.Cols)
	}
	b.WriteString("\n")
}

func writeRecommendations(b *strings.Builder) {
	b.WriteString("## Recommendations (National Scale)\n\n")
	for _, r := range []string{
		"Expand capacity in top-volume states (additional mobile centres, extended hours).",
		"Target under-represented states (negative share deltas) with focused enrolment and biometric drives.",
		"Reduce missingness in high-impact fields (IDs, timestamps, centre info) to unlock better match rates.",
		"Monitor daily volatility; staff peak days and smooth demand with appointment slots.",
		"Instrument operational dashboards per district; set SLAs for data completeness and processing times.",
		"Add fairness monitoring of success rates across states and centres where labels are available.",
	} {
		fmt.Fprintf(b, "- %s\n", r)
	}
}

func pct1(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func pct2(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// InsightsSummaryJSON renders insights_summary.json: the per-dataset KPI
// snapshot keyed by dataset name.
func InsightsSummaryJSON(profiles []insight.DatasetProfile) ([]byte, error) {
	root := artifact.Object{}
	for i := range profiles {
		p := &profiles[i]
		root[p.Name] = artifact.Object{
			"kpis":         kpisValue(&p.KPIs),
			"state_shares": stateSharesValue(p.StateShares),
			"daily_volume": dailyVolumeValue(p.DailyVolume),
			"columns":      stringsValue(p.Columns),
		}
	}
	return artifact.MarshalIndented(root)
}

func kpisValue(k *insight.KPIs) artifact.Value {
	obj := artifact.Object{
		"rows":         artifact.Int(k.Rows),
		"cols":         artifact.Int(k.Cols),
		"missing_rate": artifact.Float(k.MissingRate),
		"datetime_col": optString(k.DatetimeCol),
		"state_col":    optString(k.StateCol),
		"district_col": optString(k.DistrictCol),
		"n_states":     artifact.Int(k.States),
		"n_districts":  artifact.Int(k.Districts),
	}
	if k.HasDates {
		obj["date_min"] = artifact.String(k.DateMin.String())
		obj["date_max"] = artifact.String(k.DateMax.String())
	} else {
		obj["date_min"] = artifact.Null{}
		obj["date_max"] = artifact.Null{}
	}
	return obj
}

func stateSharesValue(shares []insight.StateShare) artifact.Value {
	arr := make(artifact.Array, 0, len(shares))
	for _, s := range shares {
		arr = append(arr, artifact.Object{
			"state": artifact.String(s.State),
			"share": artifact.Float(s.Share),
		})
	}
	return arr
}

func optString(s string) artifact.Value {
	if s == "" {
		return artifact.Null{}
	}
	return artifact.String(s)
}

func stringsValue(ss []string) artifact.Value {
	arr := make(artifact.Array, 0, len(ss))
	for _, s := range ss {
		arr = append(arr, artifact.String(s))
	}
	return arr
}
