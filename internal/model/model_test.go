package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModel(t *testing.T) {
	m := Default()

	assert.Equal(t, "cers-default", m.Name)

	assert.Equal(t, 0.40, m.Weights.Gap)
	assert.Equal(t, 0.25, m.Weights.Migration)
	assert.Equal(t, 0.20, m.Weights.Volatility)
	assert.Equal(t, 0.15, m.Weights.VolumePressure)

	require.Len(t, m.Bands, 4)
	assert.Equal(t, []string{"Low", "Medium", "High", "Critical"}, m.BandLabels())
	assert.Equal(t, 100.0, m.Bands[3].Upper)

	assert.Equal(t, []int{3, 6, 9, 12}, m.Calendar.QuarterEndMonths)
	assert.Equal(t, []int{4, 5, 10, 11}, m.Calendar.HarvestMonths)
	assert.Equal(t, []int{10, 11, 3, 4}, m.Calendar.FestivalMonths)

	assert.Equal(t, 0.90, m.Thresholds.AnomalyQuantile)
	assert.Equal(t, int64(100), m.Thresholds.MinEnrolments)
	assert.Equal(t, 90, m.Thresholds.RecentWindowDays)

	assert.Equal(t, 5, m.Intervention.DistrictsPerVan)
	assert.Equal(t, 0.10, m.Intervention.SMSCost)
	assert.Equal(t, int64(50), m.Intervention.AlertMinEnrolments)

	assert.Equal(t, 5000.0, m.Economics.CostPerExcludedCitizen)
	assert.Equal(t, 200000.0, m.Economics.VanMonthlyCost)
	assert.Equal(t, 150, m.Economics.CitizensPerVanPerDay)
	assert.Equal(t, 4.5, m.Economics.FamilySize)
}

func TestDefaultModelValidates(t *testing.T) {
	errs := Validate(Default())
	assert.Empty(t, errs, "embedded model should have no validation errors")
}

func TestBandFor(t *testing.T) {
	m := Default()

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"zero score", 0, "Low"},
		{"mid low", 15, "Low"},
		{"low boundary inclusive", 30, "Low"},
		{"just above low", 30.01, "Medium"},
		{"medium boundary inclusive", 50, "Medium"},
		{"mid high", 65, "High"},
		{"high boundary inclusive", 70, "High"},
		{"critical", 85, "Critical"},
		{"ceiling", 100, "Critical"},
		{"above ceiling", 120, "Critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.BandFor(tt.score))
		})
	}
}

func TestBandForNoBands(t *testing.T) {
	m := &Model{}
	assert.Equal(t, "", m.BandFor(50))
}

func TestCalendarFlags(t *testing.T) {
	c := Default().Calendar

	assert.True(t, c.IsQuarterEnd(3))
	assert.True(t, c.IsQuarterEnd(12))
	assert.False(t, c.IsQuarterEnd(1))

	assert.True(t, c.IsHarvest(4))
	assert.True(t, c.IsHarvest(11))
	assert.False(t, c.IsHarvest(7))

	assert.True(t, c.IsFestival(10))
	assert.True(t, c.IsFestival(3))
	assert.False(t, c.IsFestival(6))
}
