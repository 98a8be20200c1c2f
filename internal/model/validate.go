package model

import (
	"fmt"
	"math"
	"strings"
)

// Validation error codes (E200-E299)
const (
	// Model errors (E200)
	ErrModelNameEmpty = "E200" // name is required

	// Weight errors (E201-E209)
	ErrWeightOutOfRange = "E201" // weight outside [0, 1]
	ErrWeightSum        = "E202" // weights must sum to 1

	// Band errors (E210-E219)
	ErrBandLabelEmpty     = "E210" // band label is required
	ErrDuplicateBandLabel = "E211" // duplicate band label
	ErrBandOrder          = "E212" // band uppers must strictly ascend
	ErrBandCeiling        = "E213" // final band must cover scores up to 100

	// Calendar errors (E220-E229)
	ErrMonthListEmpty  = "E220" // month list must be non-empty
	ErrMonthOutOfRange = "E221" // month outside 1..12
	ErrDuplicateMonth  = "E222" // month listed twice

	// Threshold errors (E230-E239)
	ErrQuantileOutOfRange  = "E230" // quantile outside [0, 1]
	ErrNegativeThreshold   = "E231" // threshold must be non-negative
	ErrInvalidSignificance = "E232" // significance outside (0, 1)
	ErrInvalidWindow       = "E233" // window must be positive

	// Intervention errors (E240-E249)
	ErrInterventionCount = "E240" // count parameter must be positive
	ErrInterventionRate  = "E241" // rate outside [0, 1]
	ErrInterventionCost  = "E242" // cost must be non-negative
	ErrCutoffOutOfRange  = "E243" // completion cutoff outside [0, 100]

	// Economics errors (E250-E259)
	ErrNegativeAmount     = "E250" // monetary amount must be non-negative
	ErrEconomicsRate      = "E251" // rate outside [0, 1]
	ErrEconomicsCount     = "E252" // count parameter must be positive
	ErrWorkingDaysInvalid = "E253" // working days outside 1..31
)

// weightSumTolerance absorbs float rounding when weights are written as
// decimals like 0.40 + 0.25 + 0.20 + 0.15.
const weightSumTolerance = 1e-9

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled model against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(m *Model) []ValidationError {
	var errs []ValidationError

	// E200: name is required
	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required and must be non-empty",
			Code:    ErrModelNameEmpty,
		})
	}

	errs = append(errs, validateWeights(&m.Weights)...)
	errs = append(errs, validateBands(m.Bands)...)
	errs = append(errs, validateCalendar(&m.Calendar)...)
	errs = append(errs, validateThresholds(&m.Thresholds)...)
	errs = append(errs, validateIntervention(&m.Intervention)...)
	errs = append(errs, validateEconomics(&m.Economics)...)

	return errs
}

// validateWeights checks the component weights of the composite score.
func validateWeights(w *Weights) []ValidationError {
	var errs []ValidationError

	components := []struct {
		field string
		value float64
	}{
		{"weights.gap", w.Gap},
		{"weights.migration", w.Migration},
		{"weights.volatility", w.Volatility},
		{"weights.volume_pressure", w.VolumePressure},
	}

	for _, c := range components {
		// E201: each weight in [0, 1]
		if c.value < 0 || c.value > 1 {
			errs = append(errs, ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("weight %g is outside [0, 1]", c.value),
				Code:    ErrWeightOutOfRange,
			})
		}
	}

	// E202: weights must sum to 1
	sum := w.Gap + w.Migration + w.Volatility + w.VolumePressure
	if math.Abs(sum-1) > weightSumTolerance {
		errs = append(errs, ValidationError{
			Field:   "weights",
			Message: fmt.Sprintf("weights sum to %g, must sum to 1", sum),
			Code:    ErrWeightSum,
		})
	}

	return errs
}

// validateBands checks the risk band ladder.
func validateBands(bands []Band) []ValidationError {
	var errs []ValidationError

	labels := make(map[string]bool)
	for i, b := range bands {
		// E210: band label is required
		if strings.TrimSpace(b.Label) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("bands[%d].label", i),
				Message: "band label is required and must be non-empty",
				Code:    ErrBandLabelEmpty,
			})
		}

		// E211: duplicate band label
		if labels[b.Label] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("bands[%d].label", i),
				Message: fmt.Sprintf("duplicate band label: %q", b.Label),
				Code:    ErrDuplicateBandLabel,
			})
		}
		labels[b.Label] = true

		// E212: uppers must strictly ascend
		if i > 0 && b.Upper <= bands[i-1].Upper {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("bands[%d].upper", i),
				Message: fmt.Sprintf("band upper %g must be greater than previous upper %g", b.Upper, bands[i-1].Upper),
				Code:    ErrBandOrder,
			})
		}
	}

	// E213: scores run 0..100, the last band must reach the ceiling
	if n := len(bands); n > 0 && bands[n-1].Upper < 100 {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("bands[%d].upper", n-1),
			Message: fmt.Sprintf("final band upper %g must cover scores up to 100", bands[n-1].Upper),
			Code:    ErrBandCeiling,
		})
	}

	return errs
}

// validateCalendar checks the month lists driving seasonal features.
func validateCalendar(c *Calendar) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateMonths("calendar.quarter_end_months", c.QuarterEndMonths)...)
	errs = append(errs, validateMonths("calendar.harvest_months", c.HarvestMonths)...)
	errs = append(errs, validateMonths("calendar.festival_months", c.FestivalMonths)...)
	return errs
}

func validateMonths(field string, months []int) []ValidationError {
	var errs []ValidationError

	// E220: month list must be non-empty
	if len(months) == 0 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "at least one month is required",
			Code:    ErrMonthListEmpty,
		})
	}

	seen := make(map[int]bool)
	for i, m := range months {
		// E221: month outside 1..12
		if m < 1 || m > 12 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("month %d is outside 1..12", m),
				Code:    ErrMonthOutOfRange,
			})
		}

		// E222: month listed twice
		if seen[m] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("month %d is listed twice", m),
				Code:    ErrDuplicateMonth,
			})
		}
		seen[m] = true
	}

	return errs
}

// validateThresholds checks the pattern detection thresholds.
func validateThresholds(t *Thresholds) []ValidationError {
	var errs []ValidationError

	quantiles := []struct {
		field string
		value float64
	}{
		{"thresholds.anomaly_quantile", t.AnomalyQuantile},
		{"thresholds.completion_quantile", t.CompletionQuantile},
	}
	for _, q := range quantiles {
		// E230: quantile outside [0, 1]
		if q.value < 0 || q.value > 1 {
			errs = append(errs, ValidationError{
				Field:   q.field,
				Message: fmt.Sprintf("quantile %g is outside [0, 1]", q.value),
				Code:    ErrQuantileOutOfRange,
			})
		}
	}

	// E231: threshold must be non-negative
	if t.MinEnrolments < 0 {
		errs = append(errs, ValidationError{
			Field:   "thresholds.min_enrolments",
			Message: fmt.Sprintf("min_enrolments %d must be non-negative", t.MinEnrolments),
			Code:    ErrNegativeThreshold,
		})
	}

	// E232: significance outside (0, 1)
	if t.Significance <= 0 || t.Significance >= 1 {
		errs = append(errs, ValidationError{
			Field:   "thresholds.significance",
			Message: fmt.Sprintf("significance %g must be strictly between 0 and 1", t.Significance),
			Code:    ErrInvalidSignificance,
		})
	}

	// E233: window must be positive
	if t.RecentWindowDays <= 0 {
		errs = append(errs, ValidationError{
			Field:   "thresholds.recent_window_days",
			Message: fmt.Sprintf("recent_window_days %d must be positive", t.RecentWindowDays),
			Code:    ErrInvalidWindow,
		})
	}

	return errs
}

// validateIntervention checks the intervention planning parameters.
func validateIntervention(iv *Intervention) []ValidationError {
	var errs []ValidationError

	// E240: count parameter must be positive
	if iv.DistrictsPerVan <= 0 {
		errs = append(errs, ValidationError{
			Field:   "intervention.districts_per_van",
			Message: fmt.Sprintf("districts_per_van %d must be positive", iv.DistrictsPerVan),
			Code:    ErrInterventionCount,
		})
	}
	if iv.CentersPerDistrict <= 0 {
		errs = append(errs, ValidationError{
			Field:   "intervention.centers_per_district",
			Message: fmt.Sprintf("centers_per_district %d must be positive", iv.CentersPerDistrict),
			Code:    ErrInterventionCount,
		})
	}

	// E241: rate outside [0, 1]
	if iv.ResponseRate < 0 || iv.ResponseRate > 1 {
		errs = append(errs, ValidationError{
			Field:   "intervention.response_rate",
			Message: fmt.Sprintf("response_rate %g is outside [0, 1]", iv.ResponseRate),
			Code:    ErrInterventionRate,
		})
	}

	// E242: cost must be non-negative
	if iv.SMSCost < 0 {
		errs = append(errs, ValidationError{
			Field:   "intervention.sms_cost",
			Message: fmt.Sprintf("sms_cost %g must be non-negative", iv.SMSCost),
			Code:    ErrInterventionCost,
		})
	}

	// E243: completion cutoff outside [0, 100]
	if iv.AlertCompletionCutoff < 0 || iv.AlertCompletionCutoff > 100 {
		errs = append(errs, ValidationError{
			Field:   "intervention.alert_completion_cutoff",
			Message: fmt.Sprintf("alert_completion_cutoff %g is outside [0, 100]", iv.AlertCompletionCutoff),
			Code:    ErrCutoffOutOfRange,
		})
	}
	if iv.CapacityVolatilityCutoff < 0 || iv.CapacityVolatilityCutoff > 100 {
		errs = append(errs, ValidationError{
			Field:   "intervention.capacity_volatility_cutoff",
			Message: fmt.Sprintf("capacity_volatility_cutoff %g is outside [0, 100]", iv.CapacityVolatilityCutoff),
			Code:    ErrCutoffOutOfRange,
		})
	}

	// E231: threshold must be non-negative
	if iv.AlertMinEnrolments < 0 {
		errs = append(errs, ValidationError{
			Field:   "intervention.alert_min_enrolments",
			Message: fmt.Sprintf("alert_min_enrolments %d must be non-negative", iv.AlertMinEnrolments),
			Code:    ErrNegativeThreshold,
		})
	}

	return errs
}

// validateEconomics checks the cost-benefit parameters.
func validateEconomics(e *Economics) []ValidationError {
	var errs []ValidationError

	amounts := []struct {
		field string
		value float64
	}{
		{"economics.cost_per_excluded_citizen", e.CostPerExcludedCitizen},
		{"economics.van_monthly_cost", e.VanMonthlyCost},
		{"economics.center_upgrade_cost", e.CenterUpgradeCost},
		{"economics.annual_benefit", e.AnnualBenefit},
		{"economics.reapplication_cost", e.ReapplicationCost},
	}
	for _, a := range amounts {
		// E250: monetary amount must be non-negative
		if a.value < 0 {
			errs = append(errs, ValidationError{
				Field:   a.field,
				Message: fmt.Sprintf("amount %g must be non-negative", a.value),
				Code:    ErrNegativeAmount,
			})
		}
	}

	rates := []struct {
		field string
		value float64
	}{
		{"economics.van_utilization", e.VanUtilization},
		{"economics.efficiency_gain", e.EfficiencyGain},
		{"economics.exclusion_rate", e.ExclusionRate},
		{"economics.reapplication_share", e.ReapplicationShare},
	}
	for _, r := range rates {
		// E251: rate outside [0, 1]
		if r.value < 0 || r.value > 1 {
			errs = append(errs, ValidationError{
				Field:   r.field,
				Message: fmt.Sprintf("rate %g is outside [0, 1]", r.value),
				Code:    ErrEconomicsRate,
			})
		}
	}

	// E252: count parameter must be positive
	if e.CitizensPerVanPerDay <= 0 {
		errs = append(errs, ValidationError{
			Field:   "economics.citizens_per_van_per_day",
			Message: fmt.Sprintf("citizens_per_van_per_day %d must be positive", e.CitizensPerVanPerDay),
			Code:    ErrEconomicsCount,
		})
	}
	if e.FamilySize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "economics.family_size",
			Message: fmt.Sprintf("family_size %g must be positive", e.FamilySize),
			Code:    ErrEconomicsCount,
		})
	}

	// E253: working days outside 1..31
	if e.WorkingDaysPerMonth < 1 || e.WorkingDaysPerMonth > 31 {
		errs = append(errs, ValidationError{
			Field:   "economics.working_days_per_month",
			Message: fmt.Sprintf("working_days_per_month %d is outside 1..31", e.WorkingDaysPerMonth),
			Code:    ErrWorkingDaysInvalid,
		})
	}

	return errs
}
