package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCodes(errs []ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

func TestValidateEmptyName(t *testing.T) {
	m := *Default()
	m.Name = "   "

	errs := Validate(&m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrModelNameEmpty, errs[0].Code)
	assert.Equal(t, "name", errs[0].Field)
}

func TestValidateWeightOutOfRange(t *testing.T) {
	m := *Default()
	m.Weights.Gap = -0.1

	errs := Validate(&m)
	codes := errorCodes(errs)
	assert.Contains(t, codes, ErrWeightOutOfRange)
	assert.Contains(t, codes, ErrWeightSum, "a negative weight also breaks the sum")
}

func TestValidateWeightSum(t *testing.T) {
	m := *Default()
	m.Weights.Gap = 0.5 // sum becomes 1.1

	errs := Validate(&m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrWeightSum, errs[0].Code)
	assert.Equal(t, "weights", errs[0].Field)
}

func TestValidateWeightSumTolerance(t *testing.T) {
	// 0.40 + 0.25 + 0.20 + 0.15 is not exactly 1 in binary floats.
	errs := Validate(Default())
	assert.Empty(t, errs)
}

func TestValidateBandOrder(t *testing.T) {
	m := *Default()
	m.Bands = []Band{
		{Label: "Low", Upper: 50},
		{Label: "Medium", Upper: 30},
		{Label: "High", Upper: 70},
		{Label: "Critical", Upper: 100},
	}

	errs := Validate(&m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrBandOrder, errs[0].Code)
	assert.Equal(t, "bands[1].upper", errs[0].Field)
}

func TestValidateBandCeiling(t *testing.T) {
	m := *Default()
	m.Bands = []Band{
		{Label: "Low", Upper: 30},
		{Label: "High", Upper: 90},
	}

	errs := Validate(&m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrBandCeiling, errs[0].Code)
}

func TestValidateDuplicateBandLabel(t *testing.T) {
	m := *Default()
	m.Bands = []Band{
		{Label: "Low", Upper: 30},
		{Label: "Low", Upper: 100},
	}

	errs := Validate(&m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateBandLabel, errs[0].Code)
}

func TestValidateBandLabelEmpty(t *testing.T) {
	m := *Default()
	m.Bands = []Band{
		{Label: "", Upper: 30},
		{Label: "High", Upper: 100},
	}

	errs := Validate(&m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrBandLabelEmpty, errs[0].Code)
}

func TestValidateCalendar(t *testing.T) {
	m := *Default()
	m.Calendar.QuarterEndMonths = []int{3, 3, 9, 12}
	m.Calendar.HarvestMonths = []int{4, 13}
	m.Calendar.FestivalMonths = nil

	errs := Validate(&m)
	codes := errorCodes(errs)
	assert.Contains(t, codes, ErrDuplicateMonth)
	assert.Contains(t, codes, ErrMonthOutOfRange)
	assert.Contains(t, codes, ErrMonthListEmpty)
}

func TestValidateThresholds(t *testing.T) {
	m := *Default()
	m.Thresholds.AnomalyQuantile = 1.5
	m.Thresholds.MinEnrolments = -1
	m.Thresholds.Significance = 0
	m.Thresholds.RecentWindowDays = 0

	errs := Validate(&m)
	codes := errorCodes(errs)
	assert.Contains(t, codes, ErrQuantileOutOfRange)
	assert.Contains(t, codes, ErrNegativeThreshold)
	assert.Contains(t, codes, ErrInvalidSignificance)
	assert.Contains(t, codes, ErrInvalidWindow)
}

func TestValidateIntervention(t *testing.T) {
	m := *Default()
	m.Intervention.DistrictsPerVan = 0
	m.Intervention.ResponseRate = 1.5
	m.Intervention.SMSCost = -0.10
	m.Intervention.AlertCompletionCutoff = 150

	errs := Validate(&m)
	codes := errorCodes(errs)
	assert.Contains(t, codes, ErrInterventionCount)
	assert.Contains(t, codes, ErrInterventionRate)
	assert.Contains(t, codes, ErrInterventionCost)
	assert.Contains(t, codes, ErrCutoffOutOfRange)
}

func TestValidateEconomics(t *testing.T) {
	m := *Default()
	m.Economics.VanMonthlyCost = -1
	m.Economics.ExclusionRate = 2
	m.Economics.CitizensPerVanPerDay = 0
	m.Economics.WorkingDaysPerMonth = 32

	errs := Validate(&m)
	codes := errorCodes(errs)
	assert.Contains(t, codes, ErrNegativeAmount)
	assert.Contains(t, codes, ErrEconomicsRate)
	assert.Contains(t, codes, ErrEconomicsCount)
	assert.Contains(t, codes, ErrWorkingDaysInvalid)
}

func TestValidationErrorString(t *testing.T) {
	err := ValidationError{
		Field:   "weights",
		Message: "weights sum to 1.1, must sum to 1",
		Code:    ErrWeightSum,
	}
	assert.Equal(t, "[E202] weights: weights sum to 1.1, must sum to 1", err.Error())
}
