package model

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed default.cue
var defaultSource []byte

// CompileError reports a model field that failed to compile.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the embedded model. The embedded source is part of the
// binary; failing to compile it is a build defect, so this panics rather
// than making every caller thread an impossible error.
func Default() *Model {
	m, err := compileSource(defaultSource, "default.cue")
	if err != nil {
		panic(fmt.Sprintf("embedded model failed to compile: %v", err))
	}
	return m
}

// LoadFile reads and compiles a model override from a CUE file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return compileSource(data, path)
}

func compileSource(data []byte, filename string) (*Model, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := value.LookupPath(cue.ParsePath("model"))
	if !root.Exists() {
		return nil, &CompileError{Field: "model", Message: "top-level model struct is required", Pos: value.Pos()}
	}
	return CompileModel(root)
}

// CompileModel parses a CUE value holding the model struct.
func CompileModel(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Model{}
	var err error

	if m.Name, err = requiredString(v, "name"); err != nil {
		return nil, err
	}

	if m.Weights.Gap, err = requiredFloat(v, "weights.gap"); err != nil {
		return nil, err
	}
	if m.Weights.Migration, err = requiredFloat(v, "weights.migration"); err != nil {
		return nil, err
	}
	if m.Weights.Volatility, err = requiredFloat(v, "weights.volatility"); err != nil {
		return nil, err
	}
	if m.Weights.VolumePressure, err = requiredFloat(v, "weights.volume_pressure"); err != nil {
		return nil, err
	}

	if m.Bands, err = parseBands(v); err != nil {
		return nil, err
	}

	if m.Calendar.QuarterEndMonths, err = requiredMonths(v, "calendar.quarter_end_months"); err != nil {
		return nil, err
	}
	if m.Calendar.HarvestMonths, err = requiredMonths(v, "calendar.harvest_months"); err != nil {
		return nil, err
	}
	if m.Calendar.FestivalMonths, err = requiredMonths(v, "calendar.festival_months"); err != nil {
		return nil, err
	}

	if m.Thresholds.AnomalyQuantile, err = requiredFloat(v, "thresholds.anomaly_quantile"); err != nil {
		return nil, err
	}
	if m.Thresholds.CompletionQuantile, err = requiredFloat(v, "thresholds.completion_quantile"); err != nil {
		return nil, err
	}
	if m.Thresholds.MinEnrolments, err = requiredInt(v, "thresholds.min_enrolments"); err != nil {
		return nil, err
	}
	if m.Thresholds.Significance, err = requiredFloat(v, "thresholds.significance"); err != nil {
		return nil, err
	}
	recentWindow, err := requiredInt(v, "thresholds.recent_window_days")
	if err != nil {
		return nil, err
	}
	m.Thresholds.RecentWindowDays = int(recentWindow)

	iv := v.LookupPath(cue.ParsePath("intervention"))
	if !iv.Exists() {
		return nil, &CompileError{Field: "intervention", Message: "intervention is required", Pos: v.Pos()}
	}
	districtsPerVan, err := requiredInt(iv, "districts_per_van")
	if err != nil {
		return nil, err
	}
	m.Intervention.DistrictsPerVan = int(districtsPerVan)
	if m.Intervention.ResponseRate, err = requiredFloat(iv, "response_rate"); err != nil {
		return nil, err
	}
	if m.Intervention.SMSCost, err = requiredFloat(iv, "sms_cost"); err != nil {
		return nil, err
	}
	if m.Intervention.AlertCompletionCutoff, err = requiredFloat(iv, "alert_completion_cutoff"); err != nil {
		return nil, err
	}
	if m.Intervention.AlertMinEnrolments, err = requiredInt(iv, "alert_min_enrolments"); err != nil {
		return nil, err
	}
	if m.Intervention.CapacityVolatilityCutoff, err = requiredFloat(iv, "capacity_volatility_cutoff"); err != nil {
		return nil, err
	}
	centersPerDistrict, err := requiredInt(iv, "centers_per_district")
	if err != nil {
		return nil, err
	}
	m.Intervention.CentersPerDistrict = int(centersPerDistrict)

	ev := v.LookupPath(cue.ParsePath("economics"))
	if !ev.Exists() {
		return nil, &CompileError{Field: "economics", Message: "economics is required", Pos: v.Pos()}
	}
	if m.Economics.CostPerExcludedCitizen, err = requiredFloat(ev, "cost_per_excluded_citizen"); err != nil {
		return nil, err
	}
	if m.Economics.VanMonthlyCost, err = requiredFloat(ev, "van_monthly_cost"); err != nil {
		return nil, err
	}
	if m.Economics.CenterUpgradeCost, err = requiredFloat(ev, "center_upgrade_cost"); err != nil {
		return nil, err
	}
	if m.Economics.AnnualBenefit, err = requiredFloat(ev, "annual_benefit"); err != nil {
		return nil, err
	}
	if m.Economics.ReapplicationCost, err = requiredFloat(ev, "reapplication_cost"); err != nil {
		return nil, err
	}
	citizensPerVan, err := requiredInt(ev, "citizens_per_van_per_day")
	if err != nil {
		return nil, err
	}
	m.Economics.CitizensPerVanPerDay = int(citizensPerVan)
	workingDays, err := requiredInt(ev, "working_days_per_month")
	if err != nil {
		return nil, err
	}
	m.Economics.WorkingDaysPerMonth = int(workingDays)
	if m.Economics.VanUtilization, err = requiredFloat(ev, "van_utilization"); err != nil {
		return nil, err
	}
	if m.Economics.EfficiencyGain, err = requiredFloat(ev, "efficiency_gain"); err != nil {
		return nil, err
	}
	if m.Economics.ExclusionRate, err = requiredFloat(ev, "exclusion_rate"); err != nil {
		return nil, err
	}
	if m.Economics.ReapplicationShare, err = requiredFloat(ev, "reapplication_share"); err != nil {
		return nil, err
	}
	if m.Economics.FamilySize, err = requiredFloat(ev, "family_size"); err != nil {
		return nil, err
	}

	return m, nil
}

func parseBands(v cue.Value) ([]Band, error) {
	bv := v.LookupPath(cue.ParsePath("bands"))
	if !bv.Exists() {
		return nil, &CompileError{Field: "bands", Message: "bands are required", Pos: v.Pos()}
	}

	iter, err := bv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var bands []Band
	for iter.Next() {
		elem := iter.Value()
		label, err := requiredString(elem, "label")
		if err != nil {
			return nil, err
		}
		upper, err := requiredFloat(elem, "upper")
		if err != nil {
			return nil, err
		}
		bands = append(bands, Band{Label: label, Upper: upper})
	}
	if len(bands) == 0 {
		return nil, &CompileError{Field: "bands", Message: "at least one band is required", Pos: bv.Pos()}
	}
	return bands, nil
}

func requiredString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredFloat(v cue.Value, path string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func requiredInt(v cue.Value, path string) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

func requiredMonths(v cue.Value, path string) ([]int, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var months []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		months = append(months, int(n))
	}
	return months, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
