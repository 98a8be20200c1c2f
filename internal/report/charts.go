package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"slices"
	"sort"

	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/score"
)

// Chart file names under the charts directory.
const (
	RiskMapChart        = "cers_risk_map.html"
	TopRiskChart        = "top_risk_districts.html"
	EconomicChart       = "economic_impact.html"
	SeasonalChart       = "seasonal_patterns.html"
	PresentationChart   = "presentation_dashboard.html"
	VolumesChart        = "volumes_by_dataset.html"
	MissingnessChart    = "missingness_by_dataset.html"
	SuccessRateChart    = "success_rate_by_dataset.html"
	ColumnMissingChart  = "missingness.html"
	SuccessByGroupChart = "success_by_category.html"
	DailyVolumeChart    = "daily_volume.html"
)

const (
	plotlyURL = "https://cdn.plot.ly/plotly-2.27.0.min.js"

	riskMapTopN  = 100
	riskBarTopN  = 15
	guideBarTopN = 20
	bubbleMaxPx  = 38.0
)

// Chart is one self-contained plotly page: trace data plus layout, handed
// to the CDN runtime. Data and Layout are marshaled with encoding/json, so
// map keys render sorted and output stays deterministic.
type Chart struct {
	Name   string
	Title  string
	Data   []map[string]any
	Layout map[string]any
}

var chartTmpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>html,body{margin:0;height:100%}#chart{width:100%;height:100%}</style>
</head>
<body>
<div id="chart"></div>
<script>
Plotly.newPlot("chart", {{.Data}}, {{.Layout}}, {responsive: true});
</script>
</body>
</html>
`))

// HTML renders the chart page.
func (c *Chart) HTML() ([]byte, error) {
	data, err := json.Marshal(c.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal traces: %w", err)
	}
	layout, err := json.Marshal(c.Layout)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}

	var buf bytes.Buffer
	err = chartTmpl.Execute(&buf, struct {
		Title     string
		PlotlyURL string
		Data      template.JS
		Layout    template.JS
	}{c.Title, plotlyURL, template.JS(data), template.JS(layout)})
	if err != nil {
		return nil, fmt.Errorf("execute chart template: %w", err)
	}
	return buf.Bytes(), nil
}

// StrategicCharts builds the score-command chart set in render order.
func StrategicCharts(res *pipeline.Results, m *model.Model) []Chart {
	return []Chart{
		riskMapChart(res.Scores, m),
		topRiskChart(res.Scores),
		economicChart(res),
		seasonalChart(res, m),
		presentationChart(res, m),
	}
}

// bandColors maps band labels to trace colors, hottest band first.
func bandColors(m *model.Model) map[string]string {
	palette := []string{"red", "orange", "yellow", "green", "steelblue", "gray"}
	labels := m.BandLabels()
	colors := make(map[string]string, len(labels))
	for i := range labels {
		label := labels[len(labels)-1-i]
		colors[label] = palette[min(i, len(palette)-1)]
	}
	return colors
}

// riskMapChart plots completion against CERS for the riskiest districts,
// bubble area scaled by enrolment volume, one trace per band so the legend
// doubles as a band key.
func riskMapChart(scores []score.DistrictRisk, m *model.Model) Chart {
	top := scores
	if len(top) > riskMapTopN {
		top = top[:riskMapTopN]
	}

	var maxEnrol int64 = 1
	for _, s := range top {
		if s.TotalEnrolments > maxEnrol {
			maxEnrol = s.TotalEnrolments
		}
	}
	sizeref := 2 * float64(maxEnrol) / (bubbleMaxPx * bubbleMaxPx)

	colors := bandColors(m)
	labels := m.BandLabels()
	data := make([]map[string]any, 0, len(labels))
	for i := len(labels) - 1; i >= 0; i-- {
		label := labels[i]
		var xs, ys, sizes []float64
		var texts []string
		for _, s := range top {
			if s.Band != label {
				continue
			}
			xs = append(xs, s.AvgBioCompletion)
			ys = append(ys, s.CERS)
			sizes = append(sizes, float64(s.TotalEnrolments))
			texts = append(texts, s.District+", "+s.State)
		}
		if len(xs) == 0 {
			continue
		}
		data = append(data, map[string]any{
			"type": "scatter",
			"mode": "markers",
			"name": label,
			"x":    xs,
			"y":    ys,
			"text": texts,
			"marker": map[string]any{
				"color":    colors[label],
				"size":     sizes,
				"sizemode": "area",
				"sizeref":  sizeref,
				"sizemin":  4,
				"opacity":  0.7,
				"line":     map[string]any{"width": 0.5, "color": "dimgray"},
			},
			"hovertemplate": "%{text}<br>completion %{x:.1f}%<br>CERS %{y:.1f}<extra></extra>",
		})
	}

	return Chart{
		Name:  RiskMapChart,
		Title: "CERS Risk Map",
		Data:  data,
		Layout: map[string]any{
			"title":  map[string]any{"text": "CERS Risk Map: Biometric Completion vs Exclusion Risk"},
			"xaxis":  map[string]any{"title": map[string]any{"text": "Average Biometric Completion Rate (%)"}},
			"yaxis":  map[string]any{"title": map[string]any{"text": "Citizen Exclusion Risk Score"}},
			"legend": map[string]any{"title": map[string]any{"text": "Risk Band"}},
		},
	}
}

// topRiskChart is a horizontal bar of the highest-CERS districts, worst on
// top. Plotly draws horizontal bars bottom-up, so the slice renders
// reversed.
func topRiskChart(scores []score.DistrictRisk) Chart {
	top := scores
	if len(top) > riskBarTopN {
		top = top[:riskBarTopN]
	}

	labels := make([]string, 0, len(top))
	values := make([]float64, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		labels = append(labels, top[i].District+", "+top[i].State)
		values = append(values, top[i].CERS)
	}

	return Chart{
		Name:  TopRiskChart,
		Title: "Top Risk Districts",
		Data: []map[string]any{{
			"type":        "bar",
			"orientation": "h",
			"y":           labels,
			"x":           values,
			"marker": map[string]any{
				"color":      values,
				"colorscale": "Reds",
			},
			"hovertemplate": "%{y}<br>CERS %{x:.1f}<extra></extra>",
		}},
		Layout: map[string]any{
			"title":  map[string]any{"text": fmt.Sprintf("Top %d Districts by Citizen Exclusion Risk Score", riskBarTopN)},
			"height": 600,
			"xaxis":  map[string]any{"title": map[string]any{"text": "CERS"}},
			"yaxis":  map[string]any{"automargin": true},
		},
	}
}

// economicChart stacks the cost components against the savings components.
func economicChart(res *pipeline.Results) Chart {
	e := res.Economics
	type part struct {
		label string
		side  string
		value float64
	}
	parts := []part{
		{"Mobile vans", "Costs", e.VanAnnualCost},
		{"Proactive alerts", "Costs", e.AlertCost},
		{"Capacity building", "Costs", e.CapacityCost},
		{"Exclusion prevention", "Savings", e.ExclusionPreventionSavings},
		{"Benefit delivery efficiency", "Savings", e.EfficiencySavings},
		{"Administrative", "Savings", e.AdministrativeSavings},
	}

	data := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		data = append(data, map[string]any{
			"type": "bar",
			"name": p.label,
			"x":    []string{p.side},
			"y":    []float64{p.value},
		})
	}

	return Chart{
		Name:  EconomicChart,
		Title: "Economic Impact",
		Data:  data,
		Layout: map[string]any{
			"title":   map[string]any{"text": "Economic Impact Analysis: Costs vs Savings"},
			"barmode": "stack",
			"yaxis":   map[string]any{"title": map[string]any{"text": "Rupees per year"}},
		},
	}
}

// seasonalChart plots monthly completion averages with the harvest windows
// shaded behind them.
func seasonalChart(res *pipeline.Results, m *model.Model) Chart {
	cells := res.Patterns.Seasonal
	months := make([]int, 0, len(cells))
	bio := make([]float64, 0, len(cells))
	demo := make([]float64, 0, len(cells))
	for _, c := range cells {
		months = append(months, c.Month)
		bio = append(bio, c.AvgBioCompletion)
		demo = append(demo, c.AvgDemoCompletion)
	}

	shapes := make([]map[string]any, 0, 2)
	annotations := make([]map[string]any, 0, 2)
	for _, span := range monthSpans(m.Calendar.HarvestMonths) {
		x0 := float64(span[0]) - 0.5
		x1 := float64(span[1]) + 0.5
		shapes = append(shapes, map[string]any{
			"type":      "rect",
			"xref":      "x",
			"yref":      "paper",
			"x0":        x0,
			"x1":        x1,
			"y0":        0,
			"y1":        1,
			"fillcolor": "orange",
			"opacity":   0.2,
			"line":      map[string]any{"width": 0},
		})
		annotations = append(annotations, map[string]any{
			"x":         (x0 + x1) / 2,
			"y":         1.05,
			"yref":      "paper",
			"text":      "Harvest",
			"showarrow": false,
		})
	}

	return Chart{
		Name:  SeasonalChart,
		Title: "Seasonal Patterns",
		Data: []map[string]any{
			{
				"type": "scatter",
				"mode": "lines+markers",
				"name": "Biometric completion",
				"x":    months,
				"y":    bio,
			},
			{
				"type": "scatter",
				"mode": "lines+markers",
				"name": "Demographic completion",
				"x":    months,
				"y":    demo,
			},
		},
		Layout: map[string]any{
			"title":       map[string]any{"text": "Seasonal Patterns in Update Completion Rates"},
			"xaxis":       map[string]any{"title": map[string]any{"text": "Month"}, "dtick": 1},
			"yaxis":       map[string]any{"title": map[string]any{"text": "Average Completion Rate (%)"}},
			"shapes":      shapes,
			"annotations": annotations,
		},
	}
}

// monthSpans groups a month set into contiguous [first, last] runs, in
// calendar order.
func monthSpans(months []int) [][2]int {
	if len(months) == 0 {
		return nil
	}
	sorted := slices.Clone(months)
	sort.Ints(sorted)

	var spans [][2]int
	start, prev := sorted[0], sorted[0]
	for _, mo := range sorted[1:] {
		if mo == prev || mo == prev+1 {
			prev = mo
			continue
		}
		spans = append(spans, [2]int{start, prev})
		start, prev = mo, mo
	}
	return append(spans, [2]int{start, prev})
}
