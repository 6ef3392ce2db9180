package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/external/salesforce"
	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

var (
	// ErrNotConfigured is returned when the Salesforce mapping or credentials are incomplete
	ErrNotConfigured = errors.New("salesforce is not configured")
	// ErrAuthFailed is returned when login to Salesforce fails
	ErrAuthFailed = errors.New("salesforce login failed")
)

// PushOptions narrows a push
type PushOptions struct {
	// Indexes selects notes by position; empty pushes every note
	Indexes []int
	// AppendMode overrides the configured mode when non-nil
	AppendMode *bool
}

// Pusher pushes the notes of a run to the CRM
type Pusher interface {
	PushRun(ctx context.Context, run *entities.RunResult, opts PushOptions) ([]entities.PushOutcome, error)
}

// Connector opens an authenticated CRM client
type Connector func(ctx context.Context) (Client, error)

var _ Pusher = (*PushService)(nil)

// PushService logs in once per push and writes every selected note
type PushService struct {
	cfg     *config.SalesforceConfig
	connect Connector
	logger  *zap.Logger
}

// NewPushService creates a PushService backed by the Salesforce REST API
func NewPushService(cfg *config.SalesforceConfig, httpClient *http.Client, logger *zap.Logger) *PushService {
	connect := func(ctx context.Context) (Client, error) {
		session, err := salesforce.Login(ctx, cfg, httpClient)
		if err != nil {
			return nil, err
		}
		return salesforce.NewClient(session, cfg.APIVersion, httpClient), nil
	}
	return NewPushServiceWithConnector(cfg, connect, logger)
}

// NewPushServiceWithConnector creates a PushService over an arbitrary client source
func NewPushServiceWithConnector(cfg *config.SalesforceConfig, connect Connector, logger *zap.Logger) *PushService {
	return &PushService{cfg: cfg, connect: connect, logger: logger}
}

// PushRun validates configuration, logs in and pushes the selected notes.
// Outcomes carry the note's position within the run.
func (s *PushService) PushRun(ctx context.Context, run *entities.RunResult, opts PushOptions) ([]entities.PushOutcome, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	positions, err := selectIndexes(len(run.Notes), opts.Indexes)
	if err != nil {
		return nil, err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	mapping := Mapping{
		Object:        s.cfg.ObjectAPIName,
		LookupField:   s.cfg.LookupField,
		CommentsField: s.cfg.CommentsField,
		AppendMode:    s.cfg.AppendMode,
	}
	if opts.AppendMode != nil {
		mapping.AppendMode = *opts.AppendMode
	}

	selected := make([]entities.OpportunityNotes, len(positions))
	for i, p := range positions {
		selected[i] = run.Notes[p]
	}

	outcomes := NewWriter(client, mapping, s.logger).PushAll(ctx, selected)
	for i := range outcomes {
		outcomes[i].Index = positions[i]
	}

	if s.logger != nil {
		summary := entities.Summarize(outcomes)
		s.logger.Info("📤 Push finished",
			zap.String("run_id", run.RunID),
			zap.Int("updated", summary.Updated),
			zap.Int("skipped", summary.Skipped),
			zap.Int("errors", summary.Errors),
		)
	}
	return outcomes, nil
}

func selectIndexes(total int, indexes []int) ([]int, error) {
	if len(indexes) == 0 {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	seen := make(map[int]bool, len(indexes))
	out := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= total {
			return nil, fmt.Errorf("%w: %d of %d", entities.ErrNoteIndex, i, total)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out, nil
}
