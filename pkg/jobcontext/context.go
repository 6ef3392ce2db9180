package jobcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyRunID        KeyContext = "run_id"
	keyFilename     KeyContext = "filename"
	keyIndex        KeyContext = "index"
	keyJobStartTime KeyContext = "job_start_time"
)

// DefaultTimeout bounds a job when the caller passes no timeout
const DefaultTimeout = 5 * time.Minute

// JobMetadata holds metadata for one per-transcript job
type JobMetadata struct {
	JobID     uuid.UUID
	JobType   string
	RunID     string
	Filename  string
	Index     int
	StartTime time.Time
}

// JobBegin derives a job context carrying metadata and a timeout.
// A zero timeout uses DefaultTimeout.
func JobBegin(parentCtx context.Context, jobType, runID, filename string, index int, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyJobID, uuid.New())
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyFilename, filename)
	ctx = context.WithValue(ctx, keyIndex, index)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd runs jobFunc exactly once, converting a panic into an error.
// Failed jobs are never retried.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	return jobFunc(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetRunID extracts the run the job belongs to
func GetRunID(ctx context.Context) string {
	runID, _ := ctx.Value(keyRunID).(string)
	return runID
}

// GetFilename extracts the transcript filename
func GetFilename(ctx context.Context) string {
	name, _ := ctx.Value(keyFilename).(string)
	return name
}

// GetIndex extracts the transcript position within the run
func GetIndex(ctx context.Context) int {
	index, ok := ctx.Value(keyIndex).(int)
	if !ok {
		return -1
	}
	return index
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:     jobID,
		JobType:   jobType,
		RunID:     GetRunID(ctx),
		Filename:  GetFilename(ctx),
		Index:     GetIndex(ctx),
		StartTime: startTime,
	}
}

// Elapsed returns time since JobBegin, or zero outside a job
func Elapsed(ctx context.Context) time.Duration {
	start, ok := GetJobStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(start)
}
