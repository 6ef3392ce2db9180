package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunIDLayout is the timestamp layout embedded in run ids
const RunIDLayout = "20060102T150405Z"

// RunResult is one batch of transcripts processed together.
// Notes[i] was generated from Transcripts[i].
type RunResult struct {
	RunID       string             `json:"run_id"`
	CreatedAt   time.Time          `json:"created_at"`
	ModelName   string             `json:"model_name"`
	Notes       []OpportunityNotes `json:"notes"`
	Transcripts []Transcript       `json:"transcripts,omitempty"`
}

// RunSummary is the listing view of a saved run
type RunSummary struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	ModelName string    `json:"model_name"`
	NoteCount int       `json:"note_count"`
	Failed    int       `json:"failed"`
}

// NewRunID returns run_<UTC timestamp>_<6 hex chars>
func NewRunID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "run_" + now.UTC().Format(RunIDLayout) + "_" + suffix
}

// NewRunResult starts an empty run stamped at now
func NewRunResult(now time.Time, modelName string) *RunResult {
	return &RunResult{
		RunID:     NewRunID(now),
		CreatedAt: now.UTC(),
		ModelName: modelName,
		Notes:     make([]OpportunityNotes, 0),
	}
}

// Summary returns the listing view of the run
func (r *RunResult) Summary() RunSummary {
	failed := 0
	for _, n := range r.Notes {
		if n.Failed() {
			failed++
		}
	}
	return RunSummary{
		RunID:     r.RunID,
		CreatedAt: r.CreatedAt,
		ModelName: r.ModelName,
		NoteCount: len(r.Notes),
		Failed:    failed,
	}
}
