package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
)

type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	respond func(prompt string) (string, error)
}

func (g *stubGenerator) Name() string { return "stub-model" }

func (g *stubGenerator) Complete(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.respond(prompt)
}

type memRuns struct {
	runs map[string]*entities.RunResult
}

func newMemRuns() *memRuns { return &memRuns{runs: map[string]*entities.RunResult{}} }

func (m *memRuns) Save(_ context.Context, run *entities.RunResult) error {
	cp := *run
	cp.Notes = append([]entities.OpportunityNotes(nil), run.Notes...)
	cp.Transcripts = append([]entities.Transcript(nil), run.Transcripts...)
	m.runs[run.RunID] = &cp
	return nil
}

func (m *memRuns) Get(_ context.Context, runID string) (*entities.RunResult, error) {
	r, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.Notes = append([]entities.OpportunityNotes(nil), r.Notes...)
	cp.Transcripts = append([]entities.Transcript(nil), r.Transcripts...)
	return &cp, nil
}

func (m *memRuns) List(_ context.Context, _ int) ([]entities.RunSummary, error) {
	out := make([]entities.RunSummary, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memGuard struct {
	keys map[string]bool
}

func (g *memGuard) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	delete(g.keys, key)
	return nil
}

var fixedNow = time.Date(2025, 3, 4, 15, 4, 5, 0, time.UTC)

func newTestService(gen ai.TextGenerator) (*NotesService, *memRuns, *memGuard) {
	runs := newMemRuns()
	guard := &memGuard{keys: map[string]bool{}}
	s := NewNotesService(gen, runs, guard, nil, Options{DefaultInitials: "MQ", JobTimeout: time.Second}, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s, runs, guard
}

func transcript(name string) entities.Transcript {
	return entities.Transcript{
		Filename:    name,
		CleanedText: "Alice: we need faster dashboards.",
		Metadata: entities.TranscriptMetadata{
			OpportunityName: "Acme Renewal",
			AccountName:     "Acme",
			OpportunityID:   "0065g00000AbCdEAAZ",
		},
	}
}

func TestGenerate_MetadataFlowsAndHeaderStamped(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) {
		return `{"executive_summary":"Wants speed.","opportunity_comments":"* Demo Friday\n* Pricing next week"}`, nil
	}}
	s, _, _ := newTestService(gen)

	tr := transcript("acme.txt")
	tr.Metadata.CallDate = "2025-02-03"
	tr.Metadata.Owner = "jdoe smith"

	n, err := s.Generate(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, "Acme Renewal", n.OpportunityName)
	assert.Equal(t, "Acme", n.AccountName)
	assert.Equal(t, "0065g00000AbCdEAAZ", n.OpportunityID)
	assert.Equal(t, "JDO - 2025.02.03\n* Demo Friday\n* Pricing next week", n.OpportunityComments)
	assert.Equal(t, "stub-model", n.ModelName)
	assert.Equal(t, "acme.txt", n.SourceFilename)
	assert.Equal(t, fixedNow, n.GeneratedAt)
	assert.NotEmpty(t, n.RawOutput)
	assert.False(t, n.Failed())
}

func TestGenerate_KeepsModelHeaderAndFields(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) {
		return `{"opportunity_name":"Model Name","opportunity_comments":"AB - 2025.01.01\n* Keep"}`, nil
	}}
	s, _, _ := newTestService(gen)

	n, err := s.Generate(context.Background(), transcript("a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Model Name", n.OpportunityName)
	assert.Equal(t, "AB - 2025.01.01\n* Keep", n.OpportunityComments)
}

func TestGenerate_DefaultInitialsAndToday(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) {
		return `{"opportunity_comments":"* Next"}`, nil
	}}
	s, _, _ := newTestService(gen)

	n, err := s.Generate(context.Background(), transcript("a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "MQ - 2025.03.04\n* Next", n.OpportunityComments)
}

func TestGenerate_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want entities.GenerationErrorKind
	}{
		{"unauthorized", &ai.StatusError{Backend: "openai", StatusCode: 401}, entities.GenerationAuth},
		{"rate limited", &ai.StatusError{Backend: "openai", StatusCode: 429}, entities.GenerationRateLimit},
		{"server error", &ai.StatusError{Backend: "openai", StatusCode: 500}, entities.GenerationBackend},
		{"timeout", fmt.Errorf("post: %w", context.DeadlineExceeded), entities.GenerationNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{respond: func(string) (string, error) { return "", tt.err }}
			s, _, _ := newTestService(gen)

			n, err := s.Generate(context.Background(), transcript("a.txt"))
			var genErr *entities.GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.Equal(t, tt.want, genErr.Kind)
			assert.True(t, n.Failed())
			assert.Empty(t, n.ExecutiveSummary)
			assert.Equal(t, "Acme Renewal", n.OpportunityName)
		})
	}
}

func TestGenerateRun_FailureDoesNotAbortOthers(t *testing.T) {
	gen := &stubGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, `"filename":"bad.txt"`) {
			return "", &ai.StatusError{Backend: "stub", StatusCode: 429}
		}
		return `{"executive_summary":"ok"}`, nil
	}}
	s, runs, _ := newTestService(gen)

	run, err := s.GenerateRun(context.Background(), []entities.Transcript{
		transcript("one.txt"), transcript("bad.txt"), transcript("three.txt"),
	})
	require.NoError(t, err)
	require.Len(t, run.Notes, 3)
	assert.False(t, run.Notes[0].Failed())
	assert.True(t, run.Notes[1].Failed())
	assert.Contains(t, run.Notes[1].Error, "rate_limit")
	assert.False(t, run.Notes[2].Failed())
	assert.Equal(t, 3, gen.calls)

	saved, err := runs.Get(context.Background(), run.RunID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 1, saved.Summary().Failed)
	assert.Len(t, saved.Transcripts, 3)
}

func TestGenerateRun_UnreadableTranscriptRecordedAsFailed(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) { return `{"executive_summary":"ok"}`, nil }}
	s, _, _ := newTestService(gen)

	bad := transcript("gone.txt")
	bad.CleanedText = ""
	bad.InputError = "read gone.txt: no such file or directory"

	run, err := s.GenerateRun(context.Background(), []entities.Transcript{transcript("one.txt"), bad})
	require.NoError(t, err)
	require.Len(t, run.Notes, 2)
	assert.False(t, run.Notes[0].Failed())
	assert.True(t, run.Notes[1].Failed())
	assert.Contains(t, run.Notes[1].Error, "no such file")
	assert.Equal(t, "Acme Renewal", run.Notes[1].OpportunityName)
	assert.Equal(t, 1, gen.calls)

	_, err = s.Generate(context.Background(), bad)
	assert.ErrorIs(t, err, entities.ErrTranscriptUnreadable)
}

func TestGenerateRun_RecoversPanic(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) { panic("boom") }}
	s, _, _ := newTestService(gen)

	run, err := s.GenerateRun(context.Background(), []entities.Transcript{transcript("a.txt")})
	require.NoError(t, err)
	assert.True(t, run.Notes[0].Failed())
	assert.Contains(t, run.Notes[0].Error, "panic recovered")
}

func TestGenerateRun_Empty(t *testing.T) {
	s, _, _ := newTestService(&stubGenerator{})
	_, err := s.GenerateRun(context.Background(), nil)
	assert.ErrorIs(t, err, entities.ErrNoTranscripts)
}

func TestGuard_PreventsDoubleGenerationUntilRegenerate(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) { return `{"executive_summary":"v"}`, nil }}
	s, _, guard := newTestService(gen)

	run, err := s.GenerateRun(context.Background(), []entities.Transcript{transcript("a.txt")})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	// a second pass over the same run slot is refused by the guard
	n := s.generateOne(context.Background(), run.RunID, 0, transcript("a.txt"))
	assert.True(t, n.Failed())
	assert.Contains(t, n.Error, entities.ErrAlreadyGenerated.Error())
	assert.Equal(t, 1, gen.calls)

	regenerated, err := s.Regenerate(context.Background(), run.RunID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.False(t, regenerated.Notes[0].Failed())
	assert.True(t, guard.keys[guardKey(run.RunID, 0)])
	assert.False(t, guard.keys[guardKey(run.RunID, 0)+":regenerate"])
}

func TestRegenerate_Errors(t *testing.T) {
	gen := &stubGenerator{respond: func(string) (string, error) { return `{}`, nil }}
	s, _, _ := newTestService(gen)

	_, err := s.Regenerate(context.Background(), "run_missing", 0, nil)
	assert.ErrorIs(t, err, entities.ErrRunNotFound)

	run, err := s.GenerateRun(context.Background(), []entities.Transcript{transcript("a.txt")})
	require.NoError(t, err)

	_, err = s.Regenerate(context.Background(), run.RunID, 5, nil)
	assert.ErrorIs(t, err, entities.ErrNoteIndex)
}

func TestRegenerate_Override(t *testing.T) {
	gen := &stubGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "new text") {
			return `{"executive_summary":"new"}`, nil
		}
		return `{"executive_summary":"old"}`, nil
	}}
	s, _, _ := newTestService(gen)

	run, err := s.GenerateRun(context.Background(), []entities.Transcript{transcript("a.txt")})
	require.NoError(t, err)

	override := transcript("a.txt")
	override.CleanedText = "new text"
	out, err := s.Regenerate(context.Background(), run.RunID, 0, &override)
	require.NoError(t, err)
	assert.Equal(t, "new", out.Notes[0].ExecutiveSummary)
	assert.Equal(t, "new text", out.Transcripts[0].CleanedText)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "MQ", Initials("mq", "SE"))
	assert.Equal(t, "JOH", Initials("  john doe", "SE"))
	assert.Equal(t, "SE", Initials("", "se"))
	assert.Equal(t, "SE", Initials("", ""))
}
