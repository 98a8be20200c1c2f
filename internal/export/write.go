package export

import (
	"context"
	"time"

	"github.com/roach88/enrolscan/internal/model"
	"github.com/roach88/enrolscan/internal/pipeline"
)

// WriteResults persists one scored run in a single transaction: the run
// row, every district score, every engineered district-day, and the alert
// campaign districts. Every insert is ON CONFLICT DO NOTHING keyed by the
// run token, so re-exporting the same run is a no-op rather than an error.
func (s *Store) WriteResults(ctx context.Context, res *pipeline.Results, m *model.Model) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(ErrCodeWrite, "begin export", err)
	}
	defer tx.Rollback()

	token := res.Meta.RunToken
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(token, inputs_fingerprint, model_digest, model_name, generated_at, districts, avg_cers)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		token,
		res.Meta.InputsFingerprint,
		res.Meta.ModelDigest,
		m.Name,
		res.Meta.GeneratedAt.Format(time.RFC3339),
		res.Summary.TotalDistricts,
		res.Summary.AvgCERS,
	)
	if err != nil {
		return storeErr(ErrCodeWrite, "insert run", err)
	}

	scoreStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO district_scores
		(run_token, state, district,
		 avg_bio_completion, avg_demo_completion, avg_bio_gap, bio_gap_volatility,
		 youth_ratio_enrol, youth_ratio_bio, total_enrolments,
		 gap_risk, migration_risk, volatility_risk, volume_pressure_risk,
		 cers, band)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return storeErr(ErrCodeWrite, "prepare district_scores", err)
	}
	defer scoreStmt.Close()
	for _, r := range res.Scores {
		_, err = scoreStmt.ExecContext(ctx,
			token, r.State, r.District,
			r.AvgBioCompletion, r.AvgDemoCompletion, r.AvgBioGap, r.BioGapVolatility,
			r.YouthRatioEnrol, r.YouthRatioBio, r.TotalEnrolments,
			r.GapRisk, r.MigrationRisk, r.VolatilityRisk, r.VolumePressureRisk,
			r.CERS, r.Band,
		)
		if err != nil {
			return storeErr(ErrCodeWrite, "insert district score", err)
		}
	}

	dayStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO district_days
		(run_token, day, state, district,
		 enrol_count, demo_count, bio_count,
		 demo_completion_rate, bio_completion_rate,
		 youth_ratio_enrol, youth_ratio_bio,
		 is_quarter_end, is_harvest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return storeErr(ErrCodeWrite, "prepare district_days", err)
	}
	defer dayStmt.Close()
	for _, r := range res.Frame {
		_, err = dayStmt.ExecContext(ctx,
			token, r.Day.String(), r.State, r.District,
			r.EnrolCount, r.DemoCount, r.BioCount,
			r.DemoCompletionRate, r.BioCompletionRate,
			r.YouthRatioEnrol, r.YouthRatioBio,
			r.IsQuarterEnd, r.IsHarvest,
		)
		if err != nil {
			return storeErr(ErrCodeWrite, "insert district day", err)
		}
	}

	alertStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts
		(run_token, state, district, avg_bio_completion, avg_demo_completion, recent_enrolments)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return storeErr(ErrCodeWrite, "prepare alerts", err)
	}
	defer alertStmt.Close()
	for _, d := range res.Plan.Alerts.Districts {
		_, err = alertStmt.ExecContext(ctx,
			token, d.State, d.District,
			d.AvgBioCompletion, d.AvgDemoCompletion, d.RecentEnrolments,
		)
		if err != nil {
			return storeErr(ErrCodeWrite, "insert alert district", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr(ErrCodeWrite, "commit export", err)
	}
	return nil
}
