package repositories

import (
	"context"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// RunRepository persists generation runs
type RunRepository interface {
	// Save creates or replaces the run keyed by its RunID
	Save(ctx context.Context, run *entities.RunResult) error
	// Get returns nil, nil when the run does not exist
	Get(ctx context.Context, runID string) (*entities.RunResult, error)
	// List returns runs newest first; limit <= 0 means no limit
	List(ctx context.Context, limit int) ([]entities.RunSummary, error)
}
