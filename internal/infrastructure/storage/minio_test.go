package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

type fakePutter struct {
	mu       sync.Mutex
	failures int
	objects  map[string]string
	types    map[string]string
	attempts int
}

func (f *fakePutter) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return minio.UploadInfo{}, errors.New("503 slow down")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = string(data)
	f.types[objectName] = opts.ContentType
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func newFake(failures int) *fakePutter {
	return &fakePutter{failures: failures, objects: map[string]string{}, types: map[string]string{}}
}

func fastArchiver(p putter) *MinIOClient {
	m := newArchiver(p, "notes", zap.NewNop())
	m.initialInterval = time.Millisecond
	m.maxElapsed = time.Second
	return m
}

func TestUploadBytes_RetriesTransientFailures(t *testing.T) {
	p := newFake(2)
	m := fastArchiver(p)

	require.NoError(t, m.UploadText(context.Background(), "a.txt", "hello"))
	assert.Equal(t, 3, p.attempts)
	assert.Equal(t, "hello", p.objects["a.txt"])
}

func TestUploadBytes_GivesUpWhenContextCancelled(t *testing.T) {
	p := newFake(1000)
	m := fastArchiver(p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, m.UploadText(ctx, "a.txt", "hello"))
}

func TestArchiveRun(t *testing.T) {
	p := newFake(0)
	m := fastArchiver(p)

	run := entities.NewRunResult(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), "mock")
	run.Transcripts = []entities.Transcript{{Filename: "/tmp/acme call.vtt", CleanedText: "Alice: hi"}}

	require.NoError(t, m.ArchiveRun(context.Background(), run))
	assert.Contains(t, p.objects, "runs/"+run.RunID+"/run.json")
	assert.Equal(t, "application/json", p.types["runs/"+run.RunID+"/run.json"])
	assert.Equal(t, "Alice: hi", p.objects["runs/"+run.RunID+"/transcripts/00_acme_call.vtt.txt"])
}

func TestArchiveExport(t *testing.T) {
	p := newFake(0)
	m := fastArchiver(p)

	require.NoError(t, m.ArchiveExport(context.Background(), "/out/sfdc_notes_20250203T000000Z.csv", []byte("a,b\n")))
	assert.Equal(t, "a,b\n", p.objects["exports/sfdc_notes_20250203T000000Z.csv"])
	assert.Equal(t, "text/csv", p.types["exports/sfdc_notes_20250203T000000Z.csv"])
}
