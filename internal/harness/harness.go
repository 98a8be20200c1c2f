package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/report"
)

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is true when the run behaved exactly as the scenario declares.
	Pass bool

	// Errors lists every failed expectation. Empty when Pass is true.
	Errors []string

	// Run holds the pipeline output when the run succeeded.
	Run *pipeline.Results

	// RunErr is the pipeline error when the run failed. A failed run is
	// not a harness error; error scenarios assert on it.
	RunErr error

	// Artifacts maps artifact name to rendered bytes, ready for golden
	// comparison. Populated only for successful runs.
	Artifacts map[string][]byte
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario in a throwaway directory and evaluates its
// expectations. The returned error covers harness mechanics only: temp
// files, a broken scenario model, artifact rendering. Pipeline failures
// land in Result.RunErr and are scored against the error expectation.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "enrolscan-harness-*")
	if err != nil {
		return nil, fmt.Errorf("creating scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := writeExtracts(dir, scenario.Datasets); err != nil {
		return nil, err
	}
	m, err := scenarioModel(dir, scenario.Model)
	if err != nil {
		return nil, err
	}

	in := pipeline.Inputs{
		EnrolmentDir:   filepath.Join(dir, dataset.KindEnrolment.DefaultFolder()),
		DemographicDir: filepath.Join(dir, dataset.KindDemographic.DefaultFolder()),
		BiometricDir:   filepath.Join(dir, dataset.KindBiometric.DefaultFolder()),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // suppress logs in tests
	p := pipeline.New(in, m, logger, pipeline.NewFixedGenerator(scenario.RunToken))
	p.SetClock(func() time.Time { return scenario.GeneratedAt })

	result := &Result{Pass: true}
	res, err := p.Run(context.Background())
	if err != nil {
		result.RunErr = err
		evaluateRunError(result, scenario.Expect, err)
		return result, nil
	}
	result.Run = res

	blob, err := report.RunJSON(res, m)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", report.InsightsFile, err)
	}
	result.Artifacts = map[string][]byte{
		report.ExecutiveReportFile: []byte(report.RenderExecutive(res, m)),
		report.InsightsFile:        blob,
	}

	if scenario.Expect != nil {
		if scenario.Expect.Error != "" {
			result.AddError((&AssertionError{
				Field:    "error",
				Expected: fmt.Sprintf("run fails with code %s", scenario.Expect.Error),
				Actual:   "run succeeded",
			}).Error())
		}
		for _, msg := range EvaluateExpectations(res, scenario.Expect) {
			result.AddError(msg)
		}
	}
	return result, nil
}

// evaluateRunError scores a pipeline failure against the scenario. A run
// that fails without a declared error expectation always fails the
// scenario.
func evaluateRunError(result *Result, e *Expectations, err error) {
	if e == nil || e.Error == "" {
		result.AddError((&AssertionError{
			Field:    "run",
			Expected: "pipeline run succeeds",
			Actual:   err.Error(),
		}).Error())
		return
	}

	var loadErr *dataset.LoadError
	if !errors.As(err, &loadErr) {
		result.AddError((&AssertionError{
			Field:    "error",
			Expected: fmt.Sprintf("load failure with code %s", e.Error),
			Actual:   err.Error(),
		}).Error())
		return
	}
	if loadErr.Code != e.Error {
		result.AddError((&AssertionError{
			Field:    "error",
			Expected: e.Error,
			Actual:   fmt.Sprintf("%s (%s)", loadErr.Code, loadErr.Message),
		}).Error())
	}
}

// writeExtracts lays the inline CSVs out the way a real extract drop
// looks: one conventional folder per kind, one file per folder. Kinds
// missing from the map get no folder, so the loader sees exactly what the
// scenario staged.
func writeExtracts(root string, datasets map[string]string) error {
	for kind, content := range datasets {
		dir := filepath.Join(root, dataset.Kind(kind).DefaultFolder())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating extract dir: %w", err)
		}
		path := filepath.Join(dir, "extract.csv")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing extract: %w", err)
		}
	}
	return nil
}

// scenarioModel compiles the scenario's inline model, or returns the
// default when none is given. A model that fails to compile or validate is
// a broken scenario, not a test outcome.
func scenarioModel(dir, source string) (*model.Model, error) {
	if source == "" {
		return model.Default(), nil
	}

	path := filepath.Join(dir, "model.cue")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("writing scenario model: %w", err)
	}
	m, err := model.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compiling scenario model: %w", err)
	}
	if errs := model.Validate(m); len(errs) > 0 {
		return nil, fmt.Errorf("invalid scenario model: %s", errs[0].Error())
	}
	return m, nil
}
