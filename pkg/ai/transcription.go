package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

// ErrTranscriptionDisabled is returned when TRANSCRIPTION_BACKEND is none
var ErrTranscriptionDisabled = errors.New("TRANSCRIPTION_BACKEND is 'none'; set it to openai or assemblyai to enable audio transcription")

// Transcription is the text recovered from an audio file
type Transcription struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Transcriber turns uploaded audio into plain transcript text
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcription, error)
}

// NewTranscriber builds the backend selected by cfg.Transcription.Backend
func NewTranscriber(cfg *config.Config) (Transcriber, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transcription.Backend)) {
	case "", config.TranscribeNone:
		return disabledTranscriber{}, nil
	case config.TranscribeOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for TRANSCRIPTION_BACKEND=openai")
		}
		return NewWhisperTranscriber(&cfg.OpenAI, cfg.Transcription.Language), nil
	case config.TranscribeAAI:
		if cfg.Assembly.APIKey == "" {
			return nil, fmt.Errorf("ASSEMBLYAI_API_KEY is required for TRANSCRIPTION_BACKEND=assemblyai")
		}
		return NewAssemblyAITranscriber(aai.NewClient(cfg.Assembly.APIKey), cfg.Transcription.Language), nil
	default:
		return nil, fmt.Errorf("unknown TRANSCRIPTION_BACKEND: %s", cfg.Transcription.Backend)
	}
}

type disabledTranscriber struct{}

func (disabledTranscriber) Name() string { return config.TranscribeNone }

func (disabledTranscriber) Transcribe(context.Context, string, io.Reader) (*Transcription, error) {
	return nil, ErrTranscriptionDisabled
}

// WhisperTranscriber calls the OpenAI audio transcription endpoint
type WhisperTranscriber struct {
	apiKey   string
	model    string
	baseURL  string
	language string
	client   *http.Client
}

// NewWhisperTranscriber creates an OpenAI audio transcription client
func NewWhisperTranscriber(cfg *config.OpenAIConfig, language string) *WhisperTranscriber {
	model := cfg.AudioModel
	if model == "" {
		model = "whisper-1"
	}
	base := cfg.BaseURL
	if base == "" {
		base = openAIDefaultBaseURL
	}
	return &WhisperTranscriber{
		apiKey:   cfg.APIKey,
		model:    model,
		baseURL:  strings.TrimRight(base, "/"),
		language: language,
		client:   &http.Client{Timeout: 3 * time.Minute},
	}
}

// Name returns the audio model
func (w *WhisperTranscriber) Name() string {
	return w.model
}

// Transcribe uploads the audio as multipart form data and returns the recognised text
func (w *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcription, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("model", w.model); err != nil {
		return nil, err
	}
	if w.language != "" {
		if err := mw.WriteField("language", w.language); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &StatusError{Backend: "openai_audio", StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return nil, fmt.Errorf("transcription returned empty text")
	}
	return &Transcription{Text: text, Model: w.model}, nil
}

// AssemblyAITranscriber uploads audio through the AssemblyAI SDK and waits for the transcript
type AssemblyAITranscriber struct {
	client   *aai.Client
	language string
}

// NewAssemblyAITranscriber wraps an SDK client
func NewAssemblyAITranscriber(client *aai.Client, language string) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{client: client, language: language}
}

// Name returns the backend name
func (a *AssemblyAITranscriber) Name() string {
	return config.TranscribeAAI
}

// Transcribe uploads audio and blocks until AssemblyAI finishes the transcript
func (a *AssemblyAITranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcription, error) {
	uploadURL, err := a.client.Upload(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to AssemblyAI: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	if a.language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(a.language)
	} else {
		params.LanguageDetection = aai.Bool(true)
	}

	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed for %s: %w", filepath.Base(filename), err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, fmt.Errorf("assemblyai transcription failed for %s: %s", filepath.Base(filename), aai.ToString(transcript.Error))
	}

	text := speakerText(transcript)
	if text == "" {
		return nil, fmt.Errorf("transcription returned empty text")
	}
	return &Transcription{Text: text, Model: config.TranscribeAAI}, nil
}

// speakerText renders utterances as "Speaker A: ..." lines when diarization is available
func speakerText(t aai.Transcript) string {
	if len(t.Utterances) == 0 {
		return strings.TrimSpace(aai.ToString(t.Text))
	}
	lines := make([]string, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		text := strings.TrimSpace(aai.ToString(u.Text))
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("Speaker %s: %s", aai.ToString(u.Speaker), text))
	}
	return strings.Join(lines, "\n")
}
