package pipeline

import "fmt"

// Stage names, in execution order.
const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageFeatures  = "features"
	StageScore     = "score"
	StagePatterns  = "patterns"
	StagePlan      = "plan"
	StageEconomics = "economics"
)

// stageCodes maps stages to stable error codes for CLI envelopes.
var stageCodes = map[string]string{
	StageLoad:      "E301",
	StageAggregate: "E302",
	StageFeatures:  "E303",
	StageScore:     "E304",
	StagePatterns:  "E305",
	StagePlan:      "E306",
	StageEconomics: "E307",
}

// StageError wraps a failure with the stage it occurred in. The underlying
// error stays reachable through Unwrap, so coded loader errors keep their
// own codes when inspected.
type StageError struct {
	Stage string
	Code  string
	Err   error
}

func newStageError(stage string, err error) *StageError {
	code := stageCodes[stage]
	if code == "" {
		code = "E300"
	}
	return &StageError{Stage: stage, Code: code, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("[%s] stage %s: %v", e.Code, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
