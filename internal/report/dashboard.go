package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/profiling"
)

// presentationChart is the single-page six-panel overview: band counts,
// top districts, economics, completion spread, monthly volume, and the
// migration anomaly scatter.
func presentationChart(res *pipeline.Results, m *model.Model) Chart {
	data := make([]map[string]any, 0, 8)

	// Panel 1: districts per band, hottest first.
	colors := bandColors(m)
	labels := m.BandLabels()
	bandNames := make([]string, 0, len(labels))
	bandCounts := make([]int, 0, len(labels))
	bandFill := make([]string, 0, len(labels))
	for i := len(labels) - 1; i >= 0; i-- {
		bandNames = append(bandNames, labels[i])
		bandCounts = append(bandCounts, res.Summary.BandCounts[labels[i]])
		bandFill = append(bandFill, colors[labels[i]])
	}
	data = append(data, map[string]any{
		"type":   "bar",
		"x":      bandNames,
		"y":      bandCounts,
		"marker": map[string]any{"color": bandFill},
		"xaxis":  "x",
		"yaxis":  "y",
	})

	// Panel 2: top districts by CERS with band floor guides.
	top := res.Scores
	if len(top) > guideBarTopN {
		top = top[:guideBarTopN]
	}
	topLabels := make([]string, 0, len(top))
	topValues := make([]float64, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		topLabels = append(topLabels, top[i].District)
		topValues = append(topValues, top[i].CERS)
	}
	data = append(data, map[string]any{
		"type":        "bar",
		"orientation": "h",
		"y":           topLabels,
		"x":           topValues,
		"marker":      map[string]any{"color": topValues, "colorscale": "Reds"},
		"xaxis":       "x2",
		"yaxis":       "y2",
	})

	// Panel 3: total cost against total savings.
	e := res.Economics
	data = append(data, map[string]any{
		"type":   "bar",
		"x":      []string{"Intervention cost", "Annual savings"},
		"y":      []float64{e.TotalInterventionCost, e.TotalAnnualSavings},
		"marker": map[string]any{"color": []string{"crimson", "seagreen"}},
		"xaxis":  "x3",
		"yaxis":  "y3",
	})

	// Panel 4: distribution of district biometric completion.
	completions := make([]float64, 0, len(res.Scores))
	for _, s := range res.Scores {
		completions = append(completions, s.AvgBioCompletion)
	}
	data = append(data, map[string]any{
		"type":   "histogram",
		"x":      completions,
		"nbinsx": 20,
		"marker": map[string]any{"color": "steelblue"},
		"xaxis":  "x4",
		"yaxis":  "y4",
	})

	// Panel 5: enrolment volume by month.
	months, volumes := monthlyVolume(res)
	data = append(data, map[string]any{
		"type":  "scatter",
		"mode":  "lines+markers",
		"x":     months,
		"y":     volumes,
		"xaxis": "x5",
		"yaxis": "y5",
	})

	// Panel 6: youth anomaly against completion, hotspots overlaid.
	hotspotKeys := make(map[[2]string]bool, len(res.Patterns.Hotspots))
	for _, h := range res.Patterns.Hotspots {
		hotspotKeys[[2]string{h.State, h.District}] = true
	}
	var ax, ay, hx, hy []float64
	for _, d := range res.Patterns.Districts {
		if hotspotKeys[[2]string{d.State, d.District}] {
			hx = append(hx, d.YouthUpdateAnomaly)
			hy = append(hy, d.AvgBioCompletion)
			continue
		}
		ax = append(ax, d.YouthUpdateAnomaly)
		ay = append(ay, d.AvgBioCompletion)
	}
	data = append(data,
		map[string]any{
			"type":   "scatter",
			"mode":   "markers",
			"x":      ax,
			"y":      ay,
			"marker": map[string]any{"color": "lightslategray", "size": 6},
			"xaxis":  "x6",
			"yaxis":  "y6",
		},
		map[string]any{
			"type":   "scatter",
			"mode":   "markers",
			"x":      hx,
			"y":      hy,
			"marker": map[string]any{"color": "red", "size": 8},
			"xaxis":  "x6",
			"yaxis":  "y6",
		},
	)

	shapes := make([]map[string]any, 0, 2)
	for _, floor := range bandFloorGuides(m) {
		shapes = append(shapes, map[string]any{
			"type": "line",
			"xref": "x2",
			"yref": "y2 domain",
			"x0":   floor,
			"x1":   floor,
			"y0":   0,
			"y1":   1,
			"line": map[string]any{"color": "dimgray", "dash": "dash", "width": 1},
		})
	}

	titles := []string{
		"Districts per Risk Band",
		fmt.Sprintf("Top %d by CERS", guideBarTopN),
		"Costs vs Savings",
		"Biometric Completion Distribution",
		"Monthly Enrolment Volume",
		"Youth Anomaly vs Completion",
	}
	annotations := make([]map[string]any, 0, len(titles))
	for i, t := range titles {
		sfx := suffixFor(i)
		annotations = append(annotations, map[string]any{
			"xref":      "x" + sfx + " domain",
			"yref":      "y" + sfx + " domain",
			"x":         0.5,
			"y":         1.05,
			"yanchor":   "bottom",
			"text":      t,
			"showarrow": false,
			"font":      map[string]any{"size": 13},
		})
	}

	return Chart{
		Name:  PresentationChart,
		Title: "Aadhaar Exclusion Risk Dashboard",
		Data:  data,
		Layout: map[string]any{
			"title":       map[string]any{"text": "Aadhaar Exclusion Risk Dashboard"},
			"grid":        map[string]any{"rows": 3, "columns": 2, "pattern": "independent"},
			"height":      1100,
			"showlegend":  false,
			"shapes":      shapes,
			"annotations": annotations,
			"yaxis2":      map[string]any{"automargin": true},
			"xaxis5":      map[string]any{"dtick": 1},
		},
	}
}

func suffixFor(i int) string {
	if i == 0 {
		return ""
	}
	return fmt.Sprintf("%d", i+1)
}

// bandFloorGuides returns the score floors of the top two bands, the
// thresholds worth marking on a CERS bar.
func bandFloorGuides(m *model.Model) []float64 {
	if len(m.Bands) < 2 {
		return nil
	}
	uppers := make([]float64, 0, len(m.Bands)-1)
	for _, b := range m.Bands[:len(m.Bands)-1] {
		uppers = append(uppers, b.Upper)
	}
	if len(uppers) > 2 {
		uppers = uppers[len(uppers)-2:]
	}
	return uppers
}

func monthlyVolume(res *pipeline.Results) ([]int, []int64) {
	totals := make(map[int]int64)
	for _, r := range res.Frame {
		totals[r.Month] += r.EnrolCount
	}
	months := make([]int, 0, len(totals))
	for mo := 1; mo <= 12; mo++ {
		if _, ok := totals[mo]; ok {
			months = append(months, mo)
		}
	}
	volumes := make([]int64, 0, len(months))
	for _, mo := range months {
		volumes = append(volumes, totals[mo])
	}
	return months, volumes
}

// DashboardEntry is one dataset's contribution to the comparison pages.
type DashboardEntry struct {
	Name    string
	Metrics profiling.Metrics
}

// ComparisonCharts builds the cross-dataset pages: volumes, missing rates,
// and, when any dataset carries a label column, success rates.
func ComparisonCharts(entries []DashboardEntry) []Chart {
	names := make([]string, 0, len(entries))
	rows := make([]int, 0, len(entries))
	missing := make([]float64, 0, len(entries))
	for _, e := range entries {
		names = append(names, titleCase(e.Name))
		rows = append(rows, e.Metrics.Rows)
		missing = append(missing, e.Metrics.MissingRate*100)
	}

	charts := []Chart{
		{
			Name:  VolumesChart,
			Title: "Volumes by Dataset",
			Data: []map[string]any{{
				"type":         "bar",
				"x":            names,
				"y":            rows,
				"text":         rows,
				"textposition": "auto",
			}},
			Layout: map[string]any{
				"title": map[string]any{"text": "Volumes by Dataset"},
				"yaxis": map[string]any{"title": map[string]any{"text": "Rows"}},
			},
		},
		{
			Name:  MissingnessChart,
			Title: "Missingness by Dataset",
			Data: []map[string]any{{
				"type":   "bar",
				"x":      names,
				"y":      missing,
				"marker": map[string]any{"color": "indianred"},
			}},
			Layout: map[string]any{
				"title": map[string]any{"text": "Missingness by Dataset"},
				"yaxis": map[string]any{"title": map[string]any{"text": "Missing rate (%)"}},
			},
		},
	}

	var rateNames []string
	var rates []float64
	for _, e := range entries {
		if !e.Metrics.HasSuccess {
			continue
		}
		rateNames = append(rateNames, titleCase(e.Name))
		rates = append(rates, e.Metrics.SuccessRate*100)
	}
	if len(rates) > 0 {
		charts = append(charts, Chart{
			Name:  SuccessRateChart,
			Title: "Success Rate by Dataset",
			Data: []map[string]any{{
				"type":   "bar",
				"x":      rateNames,
				"y":      rates,
				"marker": map[string]any{"color": "seagreen"},
			}},
			Layout: map[string]any{
				"title": map[string]any{"text": "Success Rate by Dataset"},
				"yaxis": map[string]any{"title": map[string]any{"text": "Success rate (%)"}, "range": []float64{0, 100}},
			},
		})
	}
	return charts
}

// ProfileCharts builds the per-dataset pages for one profile: column
// missingness always, the success-by-category bar when the outcome is
// binary, and the daily volume line when a date column was found.
func ProfileCharts(p *profiling.Profile) []Chart {
	names := make([]string, 0, len(p.Schema.Columns))
	missing := make([]float64, 0, len(p.Schema.Columns))
	for _, c := range p.Schema.Columns {
		names = append(names, c.Name)
		missing = append(missing, c.MissingRate*100)
	}
	charts := []Chart{{
		Name:  ColumnMissingChart,
		Title: "Missing Values: " + titleCase(p.Name),
		Data: []map[string]any{{
			"type":   "bar",
			"x":      names,
			"y":      missing,
			"marker": map[string]any{"color": "indianred"},
		}},
		Layout: map[string]any{
			"title": map[string]any{"text": "Missing Values by Column: " + titleCase(p.Name)},
			"xaxis": map[string]any{"automargin": true},
			"yaxis": map[string]any{"title": map[string]any{"text": "Missing rate (%)"}},
		},
	}}

	if p.Outcome != nil && p.Outcome.Binary && len(p.Outcome.ByCategory) > 0 {
		group := p.Outcome.ByCategory[0]
		values := make([]string, 0, len(group.Rates))
		rates := make([]float64, 0, len(group.Rates))
		for _, r := range group.Rates {
			values = append(values, r.Value)
			rates = append(rates, r.Rate*100)
		}
		charts = append(charts, Chart{
			Name:  SuccessByGroupChart,
			Title: "Success Rate by " + group.Column,
			Data: []map[string]any{{
				"type":   "bar",
				"x":      values,
				"y":      rates,
				"marker": map[string]any{"color": "seagreen"},
			}},
			Layout: map[string]any{
				"title": map[string]any{"text": fmt.Sprintf("Success Rate by %s: %s", group.Column, titleCase(p.Name))},
				"xaxis": map[string]any{"automargin": true},
				"yaxis": map[string]any{"title": map[string]any{"text": "Success rate (%)"}, "range": []float64{0, 100}},
			},
		})
	}

	if len(p.Daily) > 0 {
		dates := make([]string, 0, len(p.Daily))
		counts := make([]int, 0, len(p.Daily))
		for _, d := range p.Daily {
			dates = append(dates, d.Day.String())
			counts = append(counts, d.Count)
		}
		charts = append(charts, Chart{
			Name:  DailyVolumeChart,
			Title: "Daily Volume: " + titleCase(p.Name),
			Data: []map[string]any{{
				"type": "scatter",
				"mode": "lines",
				"x":    dates,
				"y":    counts,
			}},
			Layout: map[string]any{
				"title": map[string]any{"text": "Daily Volume: " + titleCase(p.Name)},
				"yaxis": map[string]any{"title": map[string]any{"text": "Records"}},
			},
		})
	}
	return charts
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Aadhaar Analysis Dashboard</title>
<style>body{font-family:sans-serif;margin:2em}li{margin:0.4em 0}</style>
</head>
<body>
<h1>Aadhaar Analysis Dashboard</h1>
<ul>
{{range .Links}}<li><a href="{{.Href}}">{{.Label}}</a></li>
{{end}}</ul>
<p>See per-dataset schema and outcome profiles under profiles/.</p>
</body>
</html>
`))

func renderDashboardIndex(entries []DashboardEntry) ([]byte, error) {
	type link struct{ Href, Label string }
	links := make([]link, 0, 3)
	for _, c := range ComparisonCharts(entries) {
		links = append(links, link{Href: c.Name, Label: c.Title})
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, struct{ Links []link }{links}); err != nil {
		return nil, fmt.Errorf("execute index template: %w", err)
	}
	return buf.Bytes(), nil
}
