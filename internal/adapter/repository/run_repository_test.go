package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/domain/repositories"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/database"
	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

func sampleRun(at time.Time, failed bool) *entities.RunResult {
	run := entities.NewRunResult(at, "mock")
	tr := entities.Transcript{Filename: "acme.vtt", CleanedText: "hi", Format: entities.FormatVTT}
	run.Transcripts = []entities.Transcript{tr}
	if failed {
		run.Notes = append(run.Notes, entities.NewFailedNotes(tr, "mock", assert.AnError, at))
	} else {
		n := entities.OpportunityNotes{OpportunityName: "Acme", ExecutiveSummary: "ok", ModelName: "mock", GeneratedAt: at.UTC()}
		n.EnsureLists()
		run.Notes = append(run.Notes, n)
	}
	return run
}

func exerciseRunRepository(t *testing.T, repo repositories.RunRepository) {
	ctx := context.Background()
	base := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	older := sampleRun(base, false)
	newer := sampleRun(base.Add(time.Hour), true)
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	got, err := repo.Get(ctx, older.RunID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, older.RunID, got.RunID)
	assert.Equal(t, "ok", got.Notes[0].ExecutiveSummary)
	assert.Equal(t, "acme.vtt", got.Transcripts[0].Filename)

	missing, err := repo.Get(ctx, "run_20000101T000000Z_ffffff")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.RunID, list[0].RunID)
	assert.Equal(t, 1, list[0].Failed)
	assert.Equal(t, 1, list[1].NoteCount)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	// saving again replaces the stored run
	older.Notes[0].ExecutiveSummary = "updated"
	require.NoError(t, repo.Save(ctx, older))
	got, err = repo.Get(ctx, older.RunID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Notes[0].ExecutiveSummary)

	list, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRunFileRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewRunFileRepository(dir)
	require.NoError(t, err)
	exerciseRunRepository(t, repo)

	files, err := filepath.Glob(filepath.Join(dir, "run_*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"run_id\": ")
}

func TestRunFileRepository_RejectsPathTraversal(t *testing.T) {
	repo, err := NewRunFileRepository(t.TempDir())
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), "../etc/passwd")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunRepository_SQLite(t *testing.T) {
	cfg := &config.Config{}
	db, err := database.NewSQLiteDB(cfg, filepath.Join(t.TempDir(), "runs.sqlite"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })

	require.NoError(t, database.AutoMigrate(db, "sqlite3", nil))
	exerciseRunRepository(t, NewRunRepository(db))
}
