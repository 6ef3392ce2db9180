package notes

import (
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// TranscriptInput is one transcript supplied as text in a JSON body
type TranscriptInput struct {
	Filename string                      `json:"filename" validate:"required,min=1,max=255"`
	Text     string                      `json:"text" validate:"required"`
	Metadata entities.TranscriptMetadata `json:"metadata"`
}

// CreateRunRequest represents the JSON request to generate notes for a batch of transcripts
type CreateRunRequest struct {
	Transcripts []TranscriptInput `json:"transcripts" validate:"required,min=1,max=50,dive"`
}

// MetadataList is the multipart "metadata" field: one entry per uploaded file, by position
type MetadataList []entities.TranscriptMetadata

// ListRunsRequest represents query parameters for listing runs
type ListRunsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// RegenerateRequest optionally replaces the stored transcript text or metadata
type RegenerateRequest struct {
	Text     *string                      `json:"text,omitempty" validate:"omitempty,min=1"`
	Metadata *entities.TranscriptMetadata `json:"metadata,omitempty"`
}

// ExportRequest represents query parameters for a CSV export
type ExportRequest struct {
	Archive bool `query:"archive"`
}

// PushRequest represents the request to push a run's notes to Salesforce
type PushRequest struct {
	Indexes    []int `json:"indexes,omitempty" validate:"omitempty,dive,min=0"`
	AppendMode *bool `json:"append_mode,omitempty"`
}
