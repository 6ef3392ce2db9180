package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

// Markers shared between the prompt builder and the mock backend.
const (
	PromptMetadataMarker   = "Metadata (authoritative if filled in):"
	PromptTranscriptMarker = "Transcript:"
)

// ErrUnknownBackend is returned for an LLM_BACKEND outside the supported set
var ErrUnknownBackend = errors.New("unknown llm backend")

// TextGenerator sends one prompt to a language model and returns its raw completion
type TextGenerator interface {
	// Name identifies the backend and model, e.g. "cortex:llama3.1-70b".
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// StatusError is a non-2xx response from a model or transcription API
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Backend, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Backend, e.StatusCode, e.Body)
}

// Unauthorized reports a rejected credential
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// RateLimited reports a throttled request
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NewTextGenerator builds the backend selected by cfg.LLM.Backend
func NewTextGenerator(cfg *config.Config) (TextGenerator, error) {
	switch config.NormalizeBackend(cfg.LLM.Backend) {
	case config.BackendMock:
		return NewMockGenerator(), nil
	case config.BackendOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for LLM_BACKEND=openai")
		}
		return NewOpenAIClient(&cfg.OpenAI, cfg.LLM.Timeout), nil
	case config.BackendCortex:
		return NewCortexClient(&cfg.Snowflake, cfg.LLM.Timeout)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.LLM.Backend)
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &http.Client{Timeout: timeout}
}

// truncate keeps error bodies readable in logs
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
