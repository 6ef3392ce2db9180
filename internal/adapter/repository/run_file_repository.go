package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/domain/repositories"
)

var runFileIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// runFileRepository stores each run as indented JSON in <dir>/<run_id>.json
type runFileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewRunFileRepository creates the directory-backed run store
func NewRunFileRepository(dir string) (repositories.RunRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &runFileRepository{dir: dir}, nil
}

func (r *runFileRepository) path(runID string) string {
	return filepath.Join(r.dir, runID+".json")
}

// Save writes the run atomically
func (r *runFileRepository) Save(ctx context.Context, run *entities.RunResult) error {
	if !runFileIDRe.MatchString(run.RunID) {
		return fmt.Errorf("invalid run id %q", run.RunID)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(r.dir, run.RunID+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path(run.RunID))
}

// Get reads a run; unknown or malformed ids return nil, nil
func (r *runFileRepository) Get(ctx context.Context, runID string) (*entities.RunResult, error) {
	if !runFileIDRe.MatchString(runID) {
		return nil, nil
	}
	data, err := os.ReadFile(r.path(runID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var run entities.RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &run, nil
}

// List decodes every run file and returns summaries newest first
func (r *runFileRepository) List(ctx context.Context, limit int) ([]entities.RunSummary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	out := make([]entities.RunSummary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := r.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil || run == nil {
			continue
		}
		out = append(out, run.Summary())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
