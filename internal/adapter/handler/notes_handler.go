package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/errors"
	notesdto "github.com/johnquangdev/opportunity-notes/internal/adapter/dto/notes"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/notes"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/transcript"
)

const defaultRunLimit = 50

// maxTranscriptBytes caps one uploaded transcript
var maxTranscriptBytes int64 = 20 << 20

// ExportArchiver keeps a copy of every CSV export
type ExportArchiver interface {
	ArchiveExport(ctx context.Context, filename string, data []byte) error
}

// Notes handles run creation, history, export and CRM push endpoints
type Notes struct {
	svc      notes.Service
	pusher   crm.Pusher
	archiver ExportArchiver
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotesHandler creates a Notes handler. archiver may be nil.
func NewNotesHandler(svc notes.Service, pusher crm.Pusher, archiver ExportArchiver, logger *zap.Logger) *Notes {
	return &Notes{
		svc:      svc,
		pusher:   pusher,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateRun generates notes for a batch of transcripts
// @Summary      Generate opportunity notes
// @Description  Accepts transcripts as multipart files (field "files", optional "metadata" JSON array by position) or as a JSON body, generates one note record per transcript and saves the run
// @Tags         Runs
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request   body      notesdto.CreateRunRequest  false  "Transcripts as text"
// @Param        files     formData  file                       false  "Transcript files (.txt, .vtt, .srt)"
// @Param        metadata  formData  string                     false  "JSON array of metadata objects, one per file"
// @Success      200       {object}  notesdto.RunResponse
// @Failure      400       {object}  map[string]interface{}     "Invalid payload or metadata"
// @Failure      500       {object}  map[string]interface{}     "Run could not be saved"
// @Router       /runs [post]
func (h *Notes) CreateRun(c echo.Context) error {
	var (
		transcripts []entities.Transcript
		err         error
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		transcripts, err = h.transcriptsFromForm(c)
	} else {
		transcripts, err = h.transcriptsFromJSON(c)
	}
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	run, err := h.svc.GenerateRun(c.Request().Context(), transcripts)
	if err != nil {
		if run != nil {
			return HandleError(h.logger, c, errors.ErrRunSaveFailed(run.RunID, err))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notesdto.NewRunResponse(run))
}

func (h *Notes) transcriptsFromJSON(c echo.Context) ([]entities.Transcript, error) {
	var req notesdto.CreateRunRequest
	if err := c.Bind(&req); err != nil {
		return nil, errors.ErrInvalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return nil, errors.ErrInvalidArgument(err.Error())
	}

	out := make([]entities.Transcript, 0, len(req.Transcripts))
	for _, in := range req.Transcripts {
		out = append(out, transcript.FromText(in.Filename, in.Text, in.Metadata))
	}
	return out, nil
}

func (h *Notes) transcriptsFromForm(c echo.Context) ([]entities.Transcript, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.ErrInvalidPayload()
	}
	files := form.File["files"]
	if len(files) == 0 {
		return nil, errors.ErrInvalidArgument("at least one file is required in field 'files'")
	}

	var metadata notesdto.MetadataList
	if raw := strings.TrimSpace(c.FormValue("metadata")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return nil, errors.ErrInvalidArgument("metadata must be a JSON array of objects")
		}
	}
	if len(metadata) > len(files) {
		return nil, errors.ErrInvalidArgument(fmt.Sprintf("metadata has %d entries for %d files", len(metadata), len(files)))
	}

	out := make([]entities.Transcript, 0, len(files))
	for i, fh := range files {
		var md entities.TranscriptMetadata
		if i < len(metadata) {
			md = metadata[i]
			if err := c.Validate(&md); err != nil {
				return nil, errors.ErrInvalidArgument(fmt.Sprintf("metadata[%d]: %v", i, err))
			}
		}

		data, err := readUpload(fh)
		if err != nil {
			out = append(out, transcript.Unreadable(fh.Filename, md, err))
			continue
		}
		t, err := transcript.Load(fh.Filename, data, md)
		if err != nil {
			t = transcript.Unreadable(fh.Filename, md, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ListRuns lists saved runs
// @Summary      List runs
// @Description  Returns saved runs, newest first
// @Tags         Runs
// @Produce      json
// @Param        limit  query     int  false  "Maximum runs to return (default 50)"
// @Success      200    {object}  notesdto.RunListResponse
// @Failure      400    {object}  map[string]interface{}  "Invalid limit"
// @Router       /runs [get]
func (h *Notes) ListRuns(c echo.Context) error {
	var req notesdto.ListRunsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Limit == 0 {
		req.Limit = defaultRunLimit
	}

	runs, err := h.svc.ListRuns(c.Request().Context(), req.Limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list runs", err))
	}
	if runs == nil {
		runs = []entities.RunSummary{}
	}
	return HandleSuccess(h.logger, c, notesdto.RunListResponse{Runs: runs, Count: len(runs)})
}

// GetRun returns one saved run
// @Summary      Get run
// @Description  Returns a saved run with every note record
// @Tags         Runs
// @Produce      json
// @Param        id   path      string  true  "Run ID"
// @Success      200  {object}  notesdto.RunResponse
// @Failure      404  {object}  map[string]interface{}  "Run not found"
// @Router       /runs/{id} [get]
func (h *Notes) GetRun(c echo.Context) error {
	run, err := h.svc.GetRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notesdto.NewRunResponse(run))
}

// Regenerate re-runs generation for one note
// @Summary      Regenerate one note
// @Description  Generates the note at index again, optionally with replacement transcript text or metadata, and saves the run
// @Tags         Runs
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true   "Run ID"
// @Param        index    path      int                         true   "Note index"
// @Param        request  body      notesdto.RegenerateRequest  false  "Replacement text or metadata"
// @Success      200      {object}  notesdto.RunResponse
// @Failure      400      {object}  map[string]interface{}      "Invalid index or payload"
// @Failure      404      {object}  map[string]interface{}      "Run not found"
// @Failure      409      {object}  map[string]interface{}      "Regeneration already running"
// @Router       /runs/{id}/notes/{index}/regenerate [post]
func (h *Notes) Regenerate(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("index must be an integer"))
	}

	var req notesdto.RegenerateRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
		if err := c.Validate(&req); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
		}
	}

	var override *entities.Transcript
	if req.Text != nil || req.Metadata != nil {
		run, err := h.svc.GetRun(ctx, runID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		if index < 0 || index >= len(run.Notes) {
			return HandleError(h.logger, c, errors.ErrTranscriptIndexOutOfRange(index, len(run.Notes)))
		}
		t := baseTranscript(run, index)
		if req.Metadata != nil {
			t.Metadata = *req.Metadata
		}
		if req.Text != nil {
			t.RawText = *req.Text
		}
		rebuilt := transcript.FromText(t.Filename, t.RawText, t.Metadata)
		override = &rebuilt
	}

	run, err := h.svc.Regenerate(ctx, runID, index, override)
	if err != nil {
		if run != nil {
			return HandleError(h.logger, c, errors.ErrRunSaveFailed(run.RunID, err))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notesdto.NewRunResponse(run))
}

// Export downloads a run's notes as CSV
// @Summary      Export run as CSV
// @Description  Streams the run's notes as a CSV attachment; archive=true also stores a copy in object storage
// @Tags         Runs
// @Produce      text/csv
// @Param        id       path      string  true   "Run ID"
// @Param        archive  query     bool    false  "Keep a copy in object storage"
// @Success      200      {file}    file
// @Failure      404      {object}  map[string]interface{}  "Run not found"
// @Failure      500      {object}  map[string]interface{}  "Export failed"
// @Router       /runs/{id}/export [get]
func (h *Notes) Export(c echo.Context) error {
	ctx := c.Request().Context()

	var req notesdto.ExportRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	run, err := h.svc.GetRun(ctx, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var buf bytes.Buffer
	if err := crm.ExportCSV(&buf, run.Notes); err != nil {
		return HandleError(h.logger, c, errors.ErrExportFailed("csv", err))
	}
	filename := crm.ExportFilename(h.now())

	if req.Archive && h.archiver != nil {
		if err := h.archiver.ArchiveExport(ctx, filename, buf.Bytes()); err != nil {
			return HandleError(h.logger, c, errors.ErrStorageFailed("archive export", err))
		}
	}

	if h.logger != nil {
		h.logger.Info("📄 Run exported",
			zap.String("run_id", run.RunID),
			zap.String("filename", filename),
			zap.Int("rows", len(run.Notes)),
		)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Push writes a run's opportunity comments to Salesforce
// @Summary      Push notes to Salesforce
// @Description  Prepends each note's opportunity comments to the latest Solution Assessment record of its opportunity and reports one outcome per note
// @Tags         Runs
// @Accept       json
// @Produce      json
// @Param        id       path      string                true   "Run ID"
// @Param        request  body      notesdto.PushRequest  false  "Note selection and append mode"
// @Success      200      {object}  notesdto.PushResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid selection"
// @Failure      404      {object}  map[string]interface{}  "Run not found"
// @Failure      412      {object}  map[string]interface{}  "Salesforce not configured"
// @Failure      502      {object}  map[string]interface{}  "Salesforce login failed"
// @Router       /runs/{id}/push [post]
func (h *Notes) Push(c echo.Context) error {
	ctx := c.Request().Context()

	var req notesdto.PushRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
		if err := c.Validate(&req); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
		}
	}

	run, err := h.svc.GetRun(ctx, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	outcomes, err := h.pusher.PushRun(ctx, run, crm.PushOptions{Indexes: req.Indexes, AppendMode: req.AppendMode})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notesdto.NewPushResponse(run.RunID, outcomes))
}

// baseTranscript returns the stored transcript at index, or a stub named after the note's source
func baseTranscript(run *entities.RunResult, index int) entities.Transcript {
	if index < len(run.Transcripts) {
		return run.Transcripts[index]
	}
	n := run.Notes[index]
	return entities.Transcript{
		Filename: n.SourceFilename,
		Metadata: entities.TranscriptMetadata{
			OpportunityName: n.OpportunityName,
			AccountName:     n.AccountName,
			OpportunityID:   n.OpportunityID,
		},
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxTranscriptBytes {
		return nil, fmt.Errorf("file is larger than %d bytes", maxTranscriptBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxTranscriptBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxTranscriptBytes {
		return nil, fmt.Errorf("file is larger than %d bytes", maxTranscriptBytes)
	}
	return data, nil
}
