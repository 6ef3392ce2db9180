package handler

import (
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/errors"
	transcriptdto "github.com/johnquangdev/opportunity-notes/internal/adapter/dto/transcript"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/transcript"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
)

// Transcripts handles transcript cleanup and audio transcription
type Transcripts struct {
	transcriber ai.Transcriber
	logger      *zap.Logger
}

// NewTranscriptsHandler creates a Transcripts handler
func NewTranscriptsHandler(transcriber ai.Transcriber, logger *zap.Logger) *Transcripts {
	return &Transcripts{transcriber: transcriber, logger: logger}
}

// Normalize cleans one uploaded transcript
// @Summary      Normalize transcript
// @Description  Strips WebVTT/SRT cue numbers, timestamps and headers and returns the cleaned text with the guessed opportunity name
// @Tags         Transcripts
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Transcript file (.txt, .vtt, .srt)"
// @Success      200   {object}  transcriptdto.NormalizeResponse
// @Failure      400   {object}  map[string]interface{}  "Missing or unreadable file"
// @Router       /transcripts/normalize [post]
func (h *Transcripts) Normalize(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}
	data, err := readUpload(fh)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrTranscriptUnreadable(fh.Filename, err))
	}
	t, err := transcript.Load(fh.Filename, data, entities.TranscriptMetadata{})
	if err != nil {
		return HandleError(h.logger, c, errors.ErrTranscriptUnreadable(fh.Filename, err))
	}

	return HandleSuccess(h.logger, c, transcriptdto.NormalizeResponse{
		Filename:        t.BaseName(),
		Format:          string(t.Format),
		OpportunityName: t.Metadata.OpportunityName,
		CleanedText:     t.CleanedText,
	})
}

// Transcribe turns an uploaded audio file into transcript text
// @Summary      Transcribe audio
// @Description  Sends the audio to the configured transcription backend. Returns 501 when TRANSCRIPTION_BACKEND is none
// @Tags         Transcripts
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Audio file"
// @Success      200   {object}  transcriptdto.TranscriptionResponse
// @Failure      400   {object}  map[string]interface{}  "Missing file"
// @Failure      501   {object}  map[string]interface{}  "Transcription disabled"
// @Failure      502   {object}  map[string]interface{}  "Transcription failed"
// @Router       /transcriptions [post]
func (h *Transcripts) Transcribe(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrTranscriptUnreadable(fh.Filename, err))
	}
	defer f.Close()

	out, err := h.transcriber.Transcribe(c.Request().Context(), fh.Filename, f)
	if err != nil {
		if stdErrors.Is(err, ai.ErrTranscriptionDisabled) {
			return HandleError(h.logger, c, err)
		}
		return HandleError(h.logger, c, errors.ErrTranscriptionFailed(err))
	}

	if h.logger != nil {
		h.logger.Info("🎙️ Audio transcribed",
			zap.String("filename", fh.Filename),
			zap.String("model", out.Model),
			zap.Int("chars", len(out.Text)),
		)
	}
	return HandleSuccess(h.logger, c, transcriptdto.TranscriptionResponse{
		Filename: fh.Filename,
		Model:    out.Model,
		Text:     out.Text,
	})
}
