// Package pipeline orchestrates one scoring run: load the three extracts,
// join them at district-day grain, engineer indicators, score districts,
// mine patterns, plan interventions, and assess economics. Stages run in a
// fixed order with per-stage timing and cancellation checks; the collected
// Results feed the report renderers and the exporter.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/roach88/enrolscan/internal/aggregate"
	"github.com/roach88/enrolscan/internal/artifact"
	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/economics"
	"github.com/roach88/enrolscan/internal/feature"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/patterns"
	"github.com/roach88/enrolscan/internal/plan"
	"github.com/roach88/enrolscan/internal/score"
)

// Inputs names the three extract directories for one run.
type Inputs struct {
	EnrolmentDir   string
	DemographicDir string
	BiometricDir   string
}

// DatasetStats records what the loader accepted from one extract.
type DatasetStats struct {
	Kind    dataset.Kind
	Rows    int
	Files   int
	Skipped int
}

// Meta identifies a run. The inputs fingerprint hashes every CSV read
// (kind-relative path, size, content), so two runs over identical data
// carry the same fingerprint regardless of where the data sits on disk.
type Meta struct {
	RunToken          string
	InputsFingerprint string
	ModelDigest       string
	GeneratedAt       time.Time
}

// Results is everything one run computed.
type Results struct {
	Inputs    []DatasetStats
	Frame     []feature.Row
	Scores    []score.DistrictRisk
	Summary   score.Summary
	Patterns  patterns.Findings
	Plan      plan.Plan
	Economics economics.Impact
	Meta      Meta
}

// Pipeline runs the scoring stages against one set of inputs and a
// compiled model.
type Pipeline struct {
	inputs Inputs
	model  *model.Model
	logger *slog.Logger
	tokens TokenGenerator
	now    func() time.Time
}

// New builds a pipeline. A nil logger falls back to slog.Default and a nil
// token generator to UUIDv7.
func New(in Inputs, m *model.Model, logger *slog.Logger, tokens TokenGenerator) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	return &Pipeline{inputs: in, model: m, logger: logger, tokens: tokens, now: time.Now}
}

// SetClock overrides the wall clock stamped into run metadata. Tests fix
// it so rendered artifacts are byte-stable.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Run executes every stage in order and returns the collected results.
// Failures wrap into a *StageError naming the stage.
func (p *Pipeline) Run(ctx context.Context) (*Results, error) {
	digest, err := p.model.Digest()
	if err != nil {
		return nil, fmt.Errorf("model digest: %w", err)
	}

	res := &Results{}
	res.Meta.RunToken = p.tokens.Generate()
	res.Meta.ModelDigest = digest
	res.Meta.GeneratedAt = p.now().UTC()

	var frame []aggregate.DistrictDay
	var loaded [3]*dataset.Dataset

	stages := []struct {
		name string
		fn   func() error
	}{
		{StageLoad, func() error {
			fingerprint, err := p.load(res, &loaded)
			if err != nil {
				return err
			}
			res.Meta.InputsFingerprint = fingerprint
			return nil
		}},
		{StageAggregate, func() error {
			frame = aggregate.Join(loaded[0], loaded[1], loaded[2])
			return nil
		}},
		{StageFeatures, func() error {
			res.Frame = feature.Engineer(frame, p.model.Calendar)
			return nil
		}},
		{StageScore, func() error {
			res.Scores = score.Compute(res.Frame, p.model)
			res.Summary = score.Summarize(res.Scores, p.model)
			return nil
		}},
		{StagePatterns, func() error {
			res.Patterns = patterns.Discover(res.Frame, p.model)
			return nil
		}},
		{StagePlan, func() error {
			res.Plan = plan.Build(res.Scores, res.Frame, p.model)
			return nil
		}},
		{StageEconomics, func() error {
			res.Economics = economics.Assess(res.Plan, p.model)
			return nil
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, newStageError(s.name, err)
		}
		start := time.Now()
		if err := s.fn(); err != nil {
			return nil, newStageError(s.name, err)
		}
		p.logger.Debug("stage complete", "stage", s.name, "duration", time.Since(start))
	}

	p.logger.Info("run complete",
		"token", res.Meta.RunToken,
		"districts", len(res.Scores),
		"fingerprint", res.Meta.InputsFingerprint)
	return res, nil
}

// load reads the three extracts, records their stats, and fingerprints
// every file read.
func (p *Pipeline) load(res *Results, loaded *[3]*dataset.Dataset) (string, error) {
	sources := []struct {
		kind dataset.Kind
		dir  string
	}{
		{dataset.KindEnrolment, p.inputs.EnrolmentDir},
		{dataset.KindDemographic, p.inputs.DemographicDir},
		{dataset.KindBiometric, p.inputs.BiometricDir},
	}

	var digests []artifact.FileDigest
	for i, src := range sources {
		ds, err := dataset.Load(src.dir, src.kind, p.logger)
		if err != nil {
			return "", err
		}
		loaded[i] = ds
		res.Inputs = append(res.Inputs, DatasetStats{
			Kind:    src.kind,
			Rows:    len(ds.Rows),
			Files:   len(ds.Sources),
			Skipped: ds.Skipped,
		})

		for _, path := range ds.Sources {
			digest, err := artifact.DigestFile(path)
			if err != nil {
				return "", err
			}
			digest.Path = relativeSource(src.kind, src.dir, path)
			digests = append(digests, digest)
		}
	}

	return artifact.InputsFingerprint(digests)
}

// relativeSource renders a source path as kind/relative-to-dir with
// forward slashes, keeping fingerprints independent of the data root.
func relativeSource(kind dataset.Kind, dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return string(kind) + "/" + filepath.ToSlash(rel)
}
