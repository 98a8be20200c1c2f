// Package report renders run artifacts: the Markdown executive report, the
// canonical JSON outputs, and static plotly pages served straight from disk.
// Every renderer is deterministic; the same results value always produces
// byte-identical files.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/enrolscan/internal/insight"
	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
	"github.com/roach88/enrolscan/internal/profiling"
)

// Fixed artifact names under the output directory.
const (
	ExecutiveReportFile = "executive_report.md"
	InsightsFile        = "insights.json"
	InsightsMarkdown    = "INSIGHTS.md"
	InsightsSummaryFile = "insights_summary.json"
	SchemaReportFile    = "schema_report.json"
	ProfileFile         = "profile.json"
	ChartsDir           = "charts"
	ProfilesDir         = "profiles"
)

// english renders counts and rupee amounts with digit grouping.
var english = message.NewPrinter(language.English)

func rupees(v float64) string {
	return english.Sprintf("₹%.0f", v)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func shortHash(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

// Writer writes artifacts under a single output directory, creating
// subdirectories as needed.
type Writer struct {
	OutDir string
	Logger *slog.Logger
}

// NewWriter returns a Writer rooted at outDir. A nil logger falls back to
// the default logger.
func NewWriter(outDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{OutDir: outDir, Logger: logger}
}

// WriteRun renders the score-command artifact set and returns the written
// paths in render order: the executive report, the full JSON output, and
// the chart pages when charts is set.
func (w *Writer) WriteRun(res *pipeline.Results, m *model.Model, charts bool) ([]string, error) {
	var written []string

	path, err := w.writeFile(ExecutiveReportFile, []byte(RenderExecutive(res, m)))
	if err != nil {
		return written, err
	}
	written = append(written, path)

	blob, err := RunJSON(res, m)
	if err != nil {
		return written, fmt.Errorf("render %s: %w", InsightsFile, err)
	}
	path, err = w.writeFile(InsightsFile, blob)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	if charts {
		for _, c := range StrategicCharts(res, m) {
			html, err := c.HTML()
			if err != nil {
				return written, fmt.Errorf("render chart %s: %w", c.Name, err)
			}
			path, err = w.writeFile(filepath.Join(ChartsDir, c.Name), html)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	w.Logger.Info("run artifacts written", "dir", w.OutDir, "files", len(written))
	return written, nil
}

// WriteInsights renders the insights-command artifacts: INSIGHTS.md and
// insights_summary.json.
func (w *Writer) WriteInsights(profiles []insight.DatasetProfile) ([]string, error) {
	var written []string

	path, err := w.writeFile(InsightsMarkdown, []byte(RenderInsights(profiles)))
	if err != nil {
		return written, err
	}
	written = append(written, path)

	blob, err := InsightsSummaryJSON(profiles)
	if err != nil {
		return written, fmt.Errorf("render %s: %w", InsightsSummaryFile, err)
	}
	path, err = w.writeFile(InsightsSummaryFile, blob)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	w.Logger.Info("insight artifacts written", "dir", w.OutDir, "files", len(written))
	return written, nil
}

// WriteProfiles renders the profile-command artifacts, one subdirectory per
// dataset: schema_report.json, profile.json, and the profile charts when
// charts is set.
func (w *Writer) WriteProfiles(profiles []profiling.Profile, charts bool) ([]string, error) {
	var written []string

	for i := range profiles {
		p := &profiles[i]
		dir := filepath.Join(ProfilesDir, p.Name)

		blob, err := SchemaReportJSON(p)
		if err != nil {
			return written, fmt.Errorf("render %s %s: %w", p.Name, SchemaReportFile, err)
		}
		path, err := w.writeFile(filepath.Join(dir, SchemaReportFile), blob)
		if err != nil {
			return written, err
		}
		written = append(written, path)

		blob, err = ProfileJSON(p)
		if err != nil {
			return written, fmt.Errorf("render %s %s: %w", p.Name, ProfileFile, err)
		}
		path, err = w.writeFile(filepath.Join(dir, ProfileFile), blob)
		if err != nil {
			return written, err
		}
		written = append(written, path)

		if !charts {
			continue
		}
		for _, c := range ProfileCharts(p) {
			html, err := c.HTML()
			if err != nil {
				return written, fmt.Errorf("render chart %s: %w", c.Name, err)
			}
			path, err = w.writeFile(filepath.Join(dir, c.Name), html)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	w.Logger.Info("profile artifacts written", "dir", w.OutDir, "files", len(written))
	return written, nil
}

// WriteDashboard renders the cross-dataset comparison pages plus the
// index.html that links them.
func (w *Writer) WriteDashboard(entries []DashboardEntry) ([]string, error) {
	var written []string

	for _, c := range ComparisonCharts(entries) {
		html, err := c.HTML()
		if err != nil {
			return written, fmt.Errorf("render chart %s: %w", c.Name, err)
		}
		path, err := w.writeFile(c.Name, html)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	html, err := renderDashboardIndex(entries)
	if err != nil {
		return written, fmt.Errorf("render index.html: %w", err)
	}
	path, err := w.writeFile("index.html", html)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	w.Logger.Info("dashboard artifacts written", "dir", w.OutDir, "files", len(written))
	return written, nil
}

func (w *Writer) writeFile(rel string, data []byte) (string, error) {
	path := filepath.Join(w.OutDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	w.Logger.Debug("artifact written", "path", path, "bytes", len(data))
	return path, nil
}
