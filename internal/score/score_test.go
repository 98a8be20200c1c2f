package score

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/aggregate"
	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/feature"
	"github.com/roach88/enrolscan/internal/model"
)

func frow(state, district string, day int, bio, demo, yrEnrol, yrBio float64, gap, enrol int64) feature.Row {
	return feature.Row{
		DistrictDay: aggregate.DistrictDay{
			Day:        dataset.Date{Year: 2025, Month: time.March, Day: day},
			State:      state,
			District:   district,
			EnrolCount: enrol,
		},
		BioCompletionRate:  bio,
		DemoCompletionRate: demo,
		YouthRatioEnrol:    yrEnrol,
		YouthRatioBio:      yrBio,
		BioEnrolGap:        gap,
	}
}

func TestComputeComponents(t *testing.T) {
	rows := []feature.Row{
		frow("Bihar", "Araria", 1, 40, 50, 0.5, 0.25, 10, 100),
		frow("Bihar", "Gaya", 1, 90, 95, 0.25, 0.25, 2, 10),
	}

	risks := Compute(rows, model.Default())
	require.Len(t, risks, 2)

	// Highest CERS first.
	araria, gaya := risks[0], risks[1]
	require.Equal(t, "Araria", araria.District)
	require.Equal(t, "Gaya", gaya.District)

	assert.Equal(t, 60.0, araria.GapRisk)
	assert.Equal(t, 100.0, araria.MigrationRisk, "0.25 youth divergence saturates the component")
	assert.Equal(t, 0.0, araria.VolatilityRisk, "single-day districts have no volatility")
	assert.Equal(t, 60.0, araria.VolumePressureRisk, "top volume rank 1.0 times the 60-point gap")
	assert.Equal(t, 58.0, araria.CERS)
	assert.Equal(t, "High", araria.Band)

	assert.Equal(t, 10.0, gaya.GapRisk)
	assert.Equal(t, 0.0, gaya.MigrationRisk)
	assert.Equal(t, 5.0, gaya.VolumePressureRisk, "volume rank 0.5 times the 10-point gap")
	assert.Equal(t, 4.75, gaya.CERS)
	assert.Equal(t, "Low", gaya.Band)
}

func TestComputeAggregatesAcrossDays(t *testing.T) {
	rows := []feature.Row{
		frow("Odisha", "Puri", 1, 40, 50, 0.3, 0.3, 10, 3),
		frow("Odisha", "Puri", 2, 60, 70, 0.3, 0.3, 30, 7),
	}

	risks := Compute(rows, model.Default())
	require.Len(t, risks, 1)
	r := risks[0]

	assert.Equal(t, 50.0, r.AvgBioCompletion)
	assert.Equal(t, 60.0, r.AvgDemoCompletion)
	assert.Equal(t, 20.0, r.AvgBioGap)
	assert.InDelta(t, math.Sqrt(200), r.BioGapVolatility, 1e-9)
	assert.Equal(t, int64(10), r.TotalEnrolments)
}

func TestComputeVolatilityRelativeToMax(t *testing.T) {
	rows := []feature.Row{
		frow("Assam", "Dhubri", 1, 50, 50, 0.2, 0.2, 10, 10),
		frow("Assam", "Dhubri", 2, 50, 50, 0.2, 0.2, 20, 10),
		frow("Assam", "Dhubri", 3, 50, 50, 0.2, 0.2, 30, 10),
		frow("Assam", "Nagaon", 1, 80, 80, 0.2, 0.2, 5, 20),
		frow("Assam", "Nagaon", 2, 80, 80, 0.2, 0.2, 5, 20),
		frow("Assam", "Nagaon", 3, 80, 80, 0.2, 0.2, 5, 20),
	}

	risks := Compute(rows, model.Default())
	require.Len(t, risks, 2)

	byDistrict := map[string]DistrictRisk{}
	for _, r := range risks {
		byDistrict[r.District] = r
	}

	assert.Equal(t, 100.0, byDistrict["Dhubri"].VolatilityRisk, "most volatile district anchors the scale")
	assert.Equal(t, 0.0, byDistrict["Nagaon"].VolatilityRisk, "constant gaps mean zero volatility")
	assert.Equal(t, 43.75, byDistrict["Dhubri"].CERS)
	assert.Equal(t, "Medium", byDistrict["Dhubri"].Band)
	assert.Equal(t, 27.5, byDistrict["Nagaon"].CERS)
	assert.Equal(t, "Low", byDistrict["Nagaon"].Band)
}

func TestComputeTieBreaksByStateDistrict(t *testing.T) {
	rows := []feature.Row{
		frow("Punjab", "Moga", 1, 50, 50, 0.2, 0.2, 5, 10),
		frow("Haryana", "Hisar", 1, 50, 50, 0.2, 0.2, 5, 10),
	}

	risks := Compute(rows, model.Default())
	require.Len(t, risks, 2)
	assert.Equal(t, risks[0].CERS, risks[1].CERS)
	assert.Equal(t, "Haryana", risks[0].State)
	assert.Equal(t, "Punjab", risks[1].State)
}

func TestComputeOverCompletion(t *testing.T) {
	// More updates than enrolments pushes completion past 100; both the gap
	// and volume pressure components floor at zero instead of going negative.
	rows := []feature.Row{
		frow("Kerala", "Kollam", 1, 150, 150, 0.2, 0.2, -5, 10),
	}

	risks := Compute(rows, model.Default())
	require.Len(t, risks, 1)
	r := risks[0]

	assert.Equal(t, 0.0, r.GapRisk)
	assert.Equal(t, 0.0, r.VolumePressureRisk)
	assert.Equal(t, 0.0, r.CERS)
	assert.Equal(t, "Low", r.Band)
}

func TestComputeEmpty(t *testing.T) {
	risks := Compute(nil, model.Default())
	assert.Empty(t, risks)
}

func TestSummarize(t *testing.T) {
	m := model.Default()
	rows := []feature.Row{
		frow("Bihar", "Araria", 1, 40, 50, 0.5, 0.25, 10, 100),
		frow("Bihar", "Gaya", 1, 90, 95, 0.25, 0.25, 2, 10),
	}

	s := Summarize(Compute(rows, m), m)

	assert.Equal(t, 2, s.TotalDistricts)
	assert.Equal(t, map[string]int{"Low": 1, "Medium": 0, "High": 1, "Critical": 0}, s.BandCounts)
	assert.Equal(t, 31.375, s.AvgCERS)
	require.Len(t, s.Top, 2)
	assert.Equal(t, "Araria", s.Top[0].District)
}

func TestSummarizeEmpty(t *testing.T) {
	m := model.Default()
	s := Summarize(nil, m)

	assert.Equal(t, 0, s.TotalDistricts)
	assert.Equal(t, 0.0, s.AvgCERS)
	assert.Empty(t, s.Top)
	assert.Equal(t, map[string]int{"Low": 0, "Medium": 0, "High": 0, "Critical": 0}, s.BandCounts)
}

func TestSummarizeTruncatesTop(t *testing.T) {
	m := model.Default()
	var rows []feature.Row
	districts := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	for i, d := range districts {
		rows = append(rows, frow("State", d, 1, float64(20+i*5), 50, 0.2, 0.2, 5, int64(10+i)))
	}

	s := Summarize(Compute(rows, m), m)
	assert.Equal(t, 12, s.TotalDistricts)
	assert.Len(t, s.Top, 10)
}
