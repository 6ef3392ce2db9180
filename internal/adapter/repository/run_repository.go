package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/domain/repositories"
)

// runRecord is the row layout of the runs table. The full run lives in Payload.
type runRecord struct {
	RunID       string         `gorm:"column:run_id;primaryKey"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	ModelName   string         `gorm:"column:model_name"`
	NoteCount   int            `gorm:"column:note_count"`
	FailedCount int            `gorm:"column:failed_count"`
	Payload     datatypes.JSON `gorm:"column:payload"`
}

func (runRecord) TableName() string {
	return "runs"
}

// runRepository implements RunRepository on Postgres or SQLite
type runRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a relational run repository
func NewRunRepository(db *gorm.DB) repositories.RunRepository {
	return &runRepository{db: db}
}

// Save upserts the run
func (r *runRepository) Save(ctx context.Context, run *entities.RunResult) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	summary := run.Summary()
	rec := runRecord{
		RunID:       run.RunID,
		CreatedAt:   run.CreatedAt.UTC(),
		ModelName:   run.ModelName,
		NoteCount:   summary.NoteCount,
		FailedCount: summary.Failed,
		Payload:     datatypes.JSON(payload),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
}

// Get loads a run by id
func (r *runRepository) Get(ctx context.Context, runID string) (*entities.RunResult, error) {
	var rec runRecord
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var run entities.RunResult
	if err := json.Unmarshal(rec.Payload, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &run, nil
}

// List returns run summaries newest first
func (r *runRepository) List(ctx context.Context, limit int) ([]entities.RunSummary, error) {
	var recs []runRecord
	q := r.db.WithContext(ctx).
		Select("run_id", "created_at", "model_name", "note_count", "failed_count").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]entities.RunSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, entities.RunSummary{
			RunID:     rec.RunID,
			CreatedAt: rec.CreatedAt.UTC(),
			ModelName: rec.ModelName,
			NoteCount: rec.NoteCount,
			Failed:    rec.FailedCount,
		})
	}
	return out, nil
}
