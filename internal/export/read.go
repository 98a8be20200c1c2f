package export

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/enrolscan/internal/score"
)

// RunRecord is one exported run's summary row.
type RunRecord struct {
	Token             string
	InputsFingerprint string
	ModelDigest       string
	ModelName         string
	GeneratedAt       time.Time
	Districts         int
	AvgCERS           float64
}

// ReadRun loads the summary row for token. Unknown tokens yield an error
// wrapping ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, token string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, inputs_fingerprint, model_digest, model_name, generated_at, districts, avg_cers
		FROM runs WHERE token = ?
	`, token)

	var rec RunRecord
	var generated string
	err := row.Scan(&rec.Token, &rec.InputsFingerprint, &rec.ModelDigest,
		&rec.ModelName, &generated, &rec.Districts, &rec.AvgCERS)
	if err != nil {
		return nil, readErr(fmt.Sprintf("read run %s", token), err)
	}
	rec.GeneratedAt, err = time.Parse(time.RFC3339, generated)
	if err != nil {
		return nil, readErr(fmt.Sprintf("parse generated_at for run %s", token), err)
	}
	return &rec, nil
}

// TopDistricts returns a run's highest-scoring districts in CERS-descending
// order, ties broken by state then district to match the pipeline's sort.
func (s *Store) TopDistricts(ctx context.Context, token string, limit int) ([]score.DistrictRisk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, district,
		       avg_bio_completion, avg_demo_completion, avg_bio_gap, bio_gap_volatility,
		       youth_ratio_enrol, youth_ratio_bio, total_enrolments,
		       gap_risk, migration_risk, volatility_risk, volume_pressure_risk,
		       cers, band
		FROM district_scores
		WHERE run_token = ?
		ORDER BY cers DESC, state ASC, district ASC
		LIMIT ?
	`, token, limit)
	if err != nil {
		return nil, readErr(fmt.Sprintf("query top districts for run %s", token), err)
	}
	defer rows.Close()

	var out []score.DistrictRisk
	for rows.Next() {
		var r score.DistrictRisk
		err := rows.Scan(&r.State, &r.District,
			&r.AvgBioCompletion, &r.AvgDemoCompletion, &r.AvgBioGap, &r.BioGapVolatility,
			&r.YouthRatioEnrol, &r.YouthRatioBio, &r.TotalEnrolments,
			&r.GapRisk, &r.MigrationRisk, &r.VolatilityRisk, &r.VolumePressureRisk,
			&r.CERS, &r.Band)
		if err != nil {
			return nil, readErr("scan district score", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("iterate district scores", err)
	}
	return out, nil
}
