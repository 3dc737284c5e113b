package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"toxeval/app"
	"toxeval/ports"
)

// runRepository persists evaluation runs. The full evaluation is stored as
// a JSONB payload alongside the summary columns used for listing, so a run
// can always be replayed byte-for-byte.
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository backed by PostgreSQL
func NewRunRepository(db *sqlx.DB) ports.RunRepositoryPort {
	return &runRepository{db: db}
}

// EnsureSchema creates the run tables if they do not exist
func (r *runRepository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		run_id TEXT PRIMARY KEY,
		study_id TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		noael DOUBLE PRECISION,
		loael DOUBLE PRECISION,
		loael_below_lowest_tested BOOLEAN NOT NULL DEFAULT FALSE,
		dose_values JSONB NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_evaluation_runs_study
		ON evaluation_runs (study_id, created_at DESC);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure run schema: %w", err)
	}
	return nil
}

// SaveRun inserts a completed evaluation run
func (r *runRepository) SaveRun(ctx context.Context, evaluation *app.StudyEvaluation) error {
	payloadJSON, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation payload: %w", err)
	}
	doseJSON, err := json.Marshal(evaluation.DoseValues)
	if err != nil {
		return fmt.Errorf("failed to marshal dose values: %w", err)
	}

	query := `INSERT INTO evaluation_runs (
		run_id, study_id, fingerprint, noael, loael,
		loael_below_lowest_tested, dose_values, payload, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		evaluation.RunID,
		evaluation.StudyID,
		evaluation.Fingerprint,
		evaluation.Derivation.NOAEL,
		evaluation.Derivation.LOAEL,
		evaluation.Derivation.LOAELBelowLowestTested,
		doseJSON,
		payloadJSON,
		evaluation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", evaluation.RunID, err)
	}
	return nil
}

// GetRun retrieves a persisted run by ID
func (r *runRepository) GetRun(ctx context.Context, runID string) (*app.StudyEvaluation, error) {
	var payloadJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM evaluation_runs WHERE run_id = $1`, runID,
	).Scan(&payloadJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}

	var evaluation app.StudyEvaluation
	if err := json.Unmarshal(payloadJSON, &evaluation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run payload: %w", err)
	}
	return &evaluation, nil
}

// ListRuns lists persisted runs, optionally filtered by study
func (r *runRepository) ListRuns(ctx context.Context, studyID string) ([]app.RunSummary, error) {
	query := `SELECT run_id, study_id, noael, loael, created_at
		FROM evaluation_runs`
	args := []interface{}{}
	if studyID != "" {
		query += ` WHERE study_id = $1`
		args = append(args, studyID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []app.RunSummary
	for rows.Next() {
		var summary app.RunSummary
		if err := rows.Scan(
			&summary.RunID, &summary.StudyID,
			&summary.NOAEL, &summary.LOAEL, &summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// Ensure runRepository implements RunRepositoryPort
var _ ports.RunRepositoryPort = (*runRepository)(nil)
