// Package store persists run summaries and enriched records so past runs
// can be reviewed without re-invoking the classifier.
package store

import (
	"context"
	"time"

	"github.com/gridsage/plantenrich/internal/model"
)

// Run is one persisted enrichment run.
type Run struct {
	ID        string           `json:"id"`
	Period    string           `json:"period"`
	Filter    string           `json:"filter"`
	Summary   model.RunSummary `json:"summary"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store defines persistence operations for enrichment runs.
type Store interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run *Run, records []model.PlantRecord) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRecords(ctx context.Context, runID string) ([]model.PlantRecord, error)
	Close() error
}
