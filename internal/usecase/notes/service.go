package notes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	domainrepo "github.com/johnquangdev/opportunity-notes/internal/domain/repositories"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
	"github.com/johnquangdev/opportunity-notes/pkg/jobcontext"
)

const jobTypeGenerateNotes = "generate_notes"

// Service defines note generation and run history operations
type Service interface {
	Generate(ctx context.Context, t entities.Transcript) (entities.OpportunityNotes, error)
	GenerateRun(ctx context.Context, transcripts []entities.Transcript) (*entities.RunResult, error)
	Regenerate(ctx context.Context, runID string, index int, override *entities.Transcript) (*entities.RunResult, error)
	GetRun(ctx context.Context, runID string) (*entities.RunResult, error)
	ListRuns(ctx context.Context, limit int) ([]entities.RunSummary, error)
}

// RunArchiver copies a saved run to secondary storage
type RunArchiver interface {
	ArchiveRun(ctx context.Context, run *entities.RunResult) error
}

// Options tunes a NotesService
type Options struct {
	// DefaultInitials heads the comments entry when the transcript has no owner
	DefaultInitials string
	// JobTimeout bounds one backend call
	JobTimeout time.Duration
	// GuardTTL is how long a generated transcript stays marked
	GuardTTL time.Duration
}

var _ Service = (*NotesService)(nil)

// NotesService generates opportunity notes through a TextGenerator
type NotesService struct {
	gen      ai.TextGenerator
	runs     domainrepo.RunRepository
	guard    domainrepo.GenerationGuard
	archiver RunArchiver
	parser   *Parser
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotesService constructs a NotesService. guard and archiver may be nil.
func NewNotesService(
	gen ai.TextGenerator,
	runs domainrepo.RunRepository,
	guard domainrepo.GenerationGuard,
	archiver RunArchiver,
	opts Options,
	logger *zap.Logger,
) *NotesService {
	if strings.TrimSpace(opts.DefaultInitials) == "" {
		opts.DefaultInitials = "SE"
	}
	if opts.GuardTTL <= 0 {
		opts.GuardTTL = 24 * time.Hour
	}
	return &NotesService{
		gen:      gen,
		runs:     runs,
		guard:    guard,
		archiver: archiver,
		parser:   NewParser(),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ModelName returns the backend name recorded on generated notes
func (s *NotesService) ModelName() string {
	return s.gen.Name()
}

// Generate calls the backend once for t. On failure it returns the failed
// record together with a *entities.GenerationError, or an error wrapping
// entities.ErrTranscriptUnreadable when t could not be read.
func (s *NotesService) Generate(ctx context.Context, t entities.Transcript) (entities.OpportunityNotes, error) {
	if t.Unreadable() {
		err := fmt.Errorf("%w: %s: %s", entities.ErrTranscriptUnreadable, t.Filename, t.InputError)
		return entities.NewFailedNotes(t, s.gen.Name(), err, s.now().UTC()), err
	}

	prompt := BuildPrompt(t)

	raw, err := s.gen.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("backend returned an empty completion")
	}
	if err != nil {
		genErr := s.classify(t, err)
		return entities.NewFailedNotes(t, s.gen.Name(), genErr, s.now().UTC()), genErr
	}

	notes := s.parser.Parse(raw)
	notes.RawOutput = raw
	notes.ModelName = s.gen.Name()
	notes.SourceFilename = t.Filename
	notes.GeneratedAt = s.now().UTC()

	md := t.Metadata
	if notes.OpportunityName == "" {
		notes.OpportunityName = md.OpportunityName
	}
	if notes.AccountName == "" {
		notes.AccountName = md.AccountName
	}
	if notes.OpportunityID == "" {
		notes.OpportunityID = md.OpportunityID
	}
	notes.OpportunityComments = s.stampHeader(notes.OpportunityComments, md)
	notes.EnsureLists()

	return notes, nil
}

// GenerateRun processes transcripts in order. A failure is recorded on that
// transcript's note and never stops the rest.
func (s *NotesService) GenerateRun(ctx context.Context, transcripts []entities.Transcript) (*entities.RunResult, error) {
	if len(transcripts) == 0 {
		return nil, entities.ErrNoTranscripts
	}

	run := entities.NewRunResult(s.now(), s.gen.Name())
	run.Transcripts = append(make([]entities.Transcript, 0, len(transcripts)), transcripts...)

	if s.logger != nil {
		s.logger.Info("🤖 Generating opportunity notes",
			zap.String("run_id", run.RunID),
			zap.String("backend", s.gen.Name()),
			zap.Int("transcripts", len(transcripts)),
		)
	}

	for i, t := range transcripts {
		run.Notes = append(run.Notes, s.generateOne(ctx, run.RunID, i, t))
	}

	if err := s.save(ctx, run); err != nil {
		return run, err
	}

	if s.logger != nil {
		summary := run.Summary()
		s.logger.Info("✅ Run completed",
			zap.String("run_id", run.RunID),
			zap.Int("notes", summary.NoteCount),
			zap.Int("failed", summary.Failed),
		)
	}
	return run, nil
}

// Regenerate re-runs generation for one note of a saved run. override, when
// non-nil, replaces the stored transcript.
func (s *NotesService) Regenerate(ctx context.Context, runID string, index int, override *entities.Transcript) (*entities.RunResult, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(run.Notes) {
		return nil, fmt.Errorf("%w: %d of %d", entities.ErrNoteIndex, index, len(run.Notes))
	}

	var t entities.Transcript
	switch {
	case override != nil:
		t = *override
	case index < len(run.Transcripts):
		t = run.Transcripts[index]
	default:
		return nil, fmt.Errorf("run %s has no stored transcript at %d; upload it again", runID, index)
	}

	lock := guardKey(runID, index) + ":regenerate"
	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, lock, s.opts.JobTimeout+time.Minute)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", entities.ErrAlreadyGenerated, lock)
		}
		defer func() {
			if err := s.guard.Release(context.WithoutCancel(ctx), lock); err != nil && s.logger != nil {
				s.logger.Warn("⚠️ Failed to release regenerate lock", zap.String("key", lock), zap.Error(err))
			}
		}()
		if err := s.guard.Release(ctx, guardKey(runID, index)); err != nil {
			return nil, err
		}
	}

	if s.logger != nil {
		s.logger.Info("🔁 Regenerating note",
			zap.String("run_id", runID),
			zap.Int("index", index),
			zap.String("filename", t.Filename),
		)
	}

	run.Notes[index] = s.generateOne(ctx, runID, index, t)
	if index < len(run.Transcripts) {
		run.Transcripts[index] = t
	}

	if err := s.save(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// GetRun loads a saved run
func (s *NotesService) GetRun(ctx context.Context, runID string) (*entities.RunResult, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrRunNotFound, runID)
	}
	return run, nil
}

// ListRuns returns saved runs newest first
func (s *NotesService) ListRuns(ctx context.Context, limit int) ([]entities.RunSummary, error) {
	return s.runs.List(ctx, limit)
}

func (s *NotesService) generateOne(parent context.Context, runID string, index int, t entities.Transcript) entities.OpportunityNotes {
	if t.Unreadable() {
		notes, err := s.Generate(parent, t)
		if s.logger != nil {
			s.logger.Warn("⚠️ Transcript unreadable, recorded as failed",
				zap.String("run_id", runID),
				zap.Int("index", index),
				zap.Error(err),
			)
		}
		return notes
	}

	key := guardKey(runID, index)
	if s.guard != nil {
		ok, err := s.guard.Acquire(parent, key, s.opts.GuardTTL)
		if err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Generation guard unavailable, continuing", zap.String("key", key), zap.Error(err))
		}
		if err == nil && !ok {
			cause := fmt.Errorf("%w: %s", entities.ErrAlreadyGenerated, key)
			return entities.NewFailedNotes(t, s.gen.Name(), cause, s.now().UTC())
		}
	}

	ctx, cancel := jobcontext.JobBegin(parent, jobTypeGenerateNotes, runID, t.Filename, index, s.opts.JobTimeout)
	defer cancel()

	var notes entities.OpportunityNotes
	err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		var genErr error
		notes, genErr = s.Generate(ctx, t)
		return genErr
	})
	if err == nil {
		if s.logger != nil {
			s.logger.Info("✅ Notes generated", append(jobFields(ctx),
				zap.Duration("elapsed", jobcontext.Elapsed(ctx)),
			)...)
		}
		return notes
	}

	var genErr *entities.GenerationError
	if !errors.As(err, &genErr) {
		genErr = &entities.GenerationError{
			Filename: t.Filename,
			Backend:  s.gen.Name(),
			Kind:     entities.GenerationInternal,
			Err:      err,
		}
	}
	if s.logger != nil {
		s.logger.Error("❌ Notes generation failed", append(jobFields(ctx),
			zap.String("kind", string(genErr.Kind)),
			zap.Error(genErr.Err),
		)...)
	}
	return entities.NewFailedNotes(t, s.gen.Name(), genErr, s.now().UTC())
}

func jobFields(ctx context.Context) []zap.Field {
	md := jobcontext.GetJobMetadata(ctx)
	return []zap.Field{
		zap.String("job_id", md.JobID.String()),
		zap.String("job_type", md.JobType),
		zap.String("run_id", md.RunID),
		zap.Int("index", md.Index),
		zap.String("filename", md.Filename),
	}
}

func (s *NotesService) save(ctx context.Context, run *entities.RunResult) error {
	if err := s.runs.Save(ctx, run); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to save run", zap.String("run_id", run.RunID), zap.Error(err))
		}
		return err
	}
	if s.archiver == nil {
		return nil
	}
	if err := s.archiver.ArchiveRun(ctx, run); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to archive run", zap.String("run_id", run.RunID), zap.Error(err))
	}
	return nil
}

func (s *NotesService) classify(t entities.Transcript, err error) *entities.GenerationError {
	kind := entities.GenerationBackend

	var statusErr *ai.StatusError
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr) && statusErr.Unauthorized():
		kind = entities.GenerationAuth
	case errors.As(err, &statusErr) && statusErr.RateLimited():
		kind = entities.GenerationRateLimit
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &urlErr), errors.As(err, &netErr):
		kind = entities.GenerationNetwork
	}

	return &entities.GenerationError{
		Filename: t.Filename,
		Backend:  s.gen.Name(),
		Kind:     kind,
		Err:      err,
	}
}

var commentsHeaderRe = regexp.MustCompile(`^[A-Za-z]{1,6} - \d{4}\.\d{2}\.\d{2}\s*$`)

// stampHeader prefixes "<INITIALS> - YYYY.MM.DD" unless the model already wrote one
func (s *NotesService) stampHeader(comments string, md entities.TranscriptMetadata) string {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return ""
	}
	first := comments
	if i := strings.IndexByte(comments, '\n'); i >= 0 {
		first = comments[:i]
	}
	if commentsHeaderRe.MatchString(strings.TrimSpace(first)) {
		return comments
	}

	date, ok := md.ParsedCallDate()
	if !ok {
		date = s.now()
	}
	return Initials(md.Owner, s.opts.DefaultInitials) + " - " + date.Format("2006.01.02") + "\n" + comments
}

// Initials derives the header initials from an owner field: the first word,
// up to three letters, upper-cased.
func Initials(owner, fallback string) string {
	fields := strings.Fields(owner)
	if len(fields) == 0 {
		fields = strings.Fields(fallback)
	}
	if len(fields) == 0 {
		return "SE"
	}
	r := []rune(fields[0])
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

func guardKey(runID string, index int) string {
	return fmt.Sprintf("notes:%s:%d", runID, index)
}
