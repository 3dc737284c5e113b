package ports

import (
	"context"

	"toxeval/app"
)

// RunRepositoryPort persists evaluation runs for reproducible regulatory
// traceability
type RunRepositoryPort interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, evaluation *app.StudyEvaluation) error
	GetRun(ctx context.Context, runID string) (*app.StudyEvaluation, error)
	ListRuns(ctx context.Context, studyID string) ([]app.RunSummary, error)
}
