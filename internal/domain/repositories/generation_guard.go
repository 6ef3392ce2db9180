package repositories

import (
	"context"
	"time"
)

// GenerationGuard records which transcripts already have notes so a run never
// calls the backend twice for the same transcript.
type GenerationGuard interface {
	// Acquire marks key as taken and reports false if it already was
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
