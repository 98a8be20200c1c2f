package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/profiling"
	"github.com/roach88/enrolscan/internal/table"
)

func TestStrategicChartsNamesAndOrder(t *testing.T) {
	charts := StrategicCharts(fixtureResults(), model.Default())

	names := make([]string, 0, len(charts))
	for _, c := range charts {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		RiskMapChart,
		TopRiskChart,
		EconomicChart,
		SeasonalChart,
		PresentationChart,
	}, names)
}

func TestChartHTMLPage(t *testing.T) {
	charts := StrategicCharts(fixtureResults(), model.Default())
	html, err := charts[0].HTML()
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, `<script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script>`)
	assert.Contains(t, page, `Plotly.newPlot("chart",`)
	assert.Contains(t, page, "<title>CERS Risk Map</title>")
	assert.Contains(t, page, "Average Biometric Completion Rate (%)")
	assert.Contains(t, page, "Araria, Bihar")
}

func TestChartHTMLDeterministic(t *testing.T) {
	c := StrategicCharts(fixtureResults(), model.Default())[4]
	first, err := c.HTML()
	require.NoError(t, err)
	second, err := c.HTML()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRiskMapSplitsTracesByBand(t *testing.T) {
	c := riskMapChart(fixtureResults().Scores, model.Default())

	require.Len(t, c.Data, 2)
	assert.Equal(t, "Critical", c.Data[0]["name"])
	assert.Equal(t, "Low", c.Data[1]["name"])
	marker := c.Data[0]["marker"].(map[string]any)
	assert.Equal(t, "red", marker["color"])
}

func TestTopRiskChartReversesForPlotly(t *testing.T) {
	c := topRiskChart(fixtureResults().Scores)

	labels := c.Data[0]["y"].([]string)
	require.Len(t, labels, 2)
	assert.Equal(t, "Gaya, Bihar", labels[0])
	assert.Equal(t, "Araria, Bihar", labels[1])
}

func TestSeasonalChartShadesHarvestWindows(t *testing.T) {
	c := seasonalChart(fixtureResults(), model.Default())

	shapes := c.Layout["shapes"].([]map[string]any)
	require.Len(t, shapes, 2)
	assert.Equal(t, 3.5, shapes[0]["x0"])
	assert.Equal(t, 5.5, shapes[0]["x1"])
	assert.Equal(t, 9.5, shapes[1]["x0"])
	assert.Equal(t, 11.5, shapes[1]["x1"])

	annotations := c.Layout["annotations"].([]map[string]any)
	require.Len(t, annotations, 2)
	assert.Equal(t, "Harvest", annotations[0]["text"])
}

func TestMonthSpans(t *testing.T) {
	assert.Equal(t, [][2]int{{4, 5}, {10, 11}}, monthSpans([]int{4, 5, 10, 11}))
	assert.Equal(t, [][2]int{{3, 3}}, monthSpans([]int{3}))
	assert.Equal(t, [][2]int{{1, 3}, {12, 12}}, monthSpans([]int{12, 1, 2, 3}))
	assert.Nil(t, monthSpans(nil))
}

func TestBandColorsDefaultLadder(t *testing.T) {
	colors := bandColors(model.Default())

	assert.Equal(t, map[string]string{
		"Critical": "red",
		"High":     "orange",
		"Medium":   "yellow",
		"Low":      "green",
	}, colors)
}

func TestBandFloorGuides(t *testing.T) {
	assert.Equal(t, []float64{50, 70}, bandFloorGuides(model.Default()))
}

func TestPresentationChartPanels(t *testing.T) {
	c := presentationChart(fixtureResults(), model.Default())

	// Six panels, with the anomaly scatter split into two traces.
	require.Len(t, c.Data, 7)
	grid := c.Layout["grid"].(map[string]any)
	assert.Equal(t, 3, grid["rows"])
	assert.Equal(t, 2, grid["columns"])

	hotspots := c.Data[6]
	assert.Equal(t, "x6", hotspots["xaxis"])
	assert.Equal(t, []float64{0.5}, hotspots["x"])
}

func TestComparisonChartsSkipSuccessWithoutLabels(t *testing.T) {
	entries := []DashboardEntry{
		{Name: "enrolment", Metrics: profiling.Metrics{Rows: 1200, MissingRate: 0.04}},
		{Name: "demographic", Metrics: profiling.Metrics{Rows: 800, MissingRate: 0.1}},
	}
	charts := ComparisonCharts(entries)
	require.Len(t, charts, 2)
	assert.Equal(t, VolumesChart, charts[0].Name)
	assert.Equal(t, MissingnessChart, charts[1].Name)

	entries[1].Metrics.HasSuccess = true
	entries[1].Metrics.SuccessRate = 0.75
	charts = ComparisonCharts(entries)
	require.Len(t, charts, 3)
	assert.Equal(t, SuccessRateChart, charts[2].Name)
	assert.Equal(t, []float64{75}, charts[2].Data[0]["y"])
}

func TestProfileChartsConditional(t *testing.T) {
	p := &profiling.Profile{
		Name: "biometric",
		Schema: profiling.Schema{
			Rows: 4, Cols: 2,
			Columns: []profiling.ColumnSchema{
				{Name: "state", Kind: table.KindString.String()},
				{Name: "bio_status", Kind: table.KindString.String(), MissingRate: 0.25},
			},
		},
	}
	charts := ProfileCharts(p)
	require.Len(t, charts, 1)
	assert.Equal(t, ColumnMissingChart, charts[0].Name)
	assert.Equal(t, []float64{0, 25}, charts[0].Data[0]["y"])

	p.Outcome = &profiling.Outcome{
		Column: "bio_status",
		Binary: true,
		ByCategory: []profiling.CategoryRates{
			{Column: "state", Rates: []profiling.OutcomeRate{{Value: "UP", Rate: 1, Count: 2}}},
		},
	}
	p.Daily = []table.DayCount{{Day: day(2025, 3, 15), Count: 4}}
	charts = ProfileCharts(p)
	require.Len(t, charts, 3)
	assert.Equal(t, SuccessByGroupChart, charts[1].Name)
	assert.Equal(t, DailyVolumeChart, charts[2].Name)
}

func TestDashboardIndexLinksPages(t *testing.T) {
	entries := []DashboardEntry{
		{Name: "enrolment", Metrics: profiling.Metrics{Rows: 10}},
	}
	html, err := renderDashboardIndex(entries)
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "<title>Aadhaar Analysis Dashboard</title>")
	assert.Contains(t, page, `<a href="volumes_by_dataset.html">Volumes by Dataset</a>`)
	assert.Contains(t, page, `<a href="missingness_by_dataset.html">Missingness by Dataset</a>`)
	assert.False(t, strings.Contains(page, "success_rate_by_dataset.html"))
}
