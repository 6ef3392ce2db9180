package entities

import (
	"path/filepath"
	"strings"
	"time"
)

// Format is the declared layout of an uploaded transcript file
type Format string

const (
	FormatPlain Format = "plain"
	FormatVTT   Format = "vtt"
	FormatSRT   Format = "srt"
)

// Source names the meeting tool a transcript came from
type Source string

const (
	SourceGong  Source = "gong"
	SourceZoom  Source = "zoom"
	SourceOther Source = "other"
)

// CallDateLayout is the wire layout of TranscriptMetadata.CallDate
const CallDateLayout = "2006-01-02"

// TranscriptMetadata is the user-supplied context attached to one transcript.
// OpportunityID, when set, takes precedence over the name when resolving the CRM record.
type TranscriptMetadata struct {
	OpportunityName string `json:"opportunity_name"`
	AccountName     string `json:"account_name"`
	OpportunityID   string `json:"opportunity_id,omitempty" validate:"omitempty,sfid"`
	CallDate        string `json:"call_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Source          Source `json:"source,omitempty" validate:"omitempty,oneof=gong zoom other"`
	Owner           string `json:"owner,omitempty"`
	Stage           string `json:"stage,omitempty"`
}

// ParsedCallDate returns the call date, if one was given and is well formed
func (m TranscriptMetadata) ParsedCallDate() (time.Time, bool) {
	if strings.TrimSpace(m.CallDate) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(CallDateLayout, strings.TrimSpace(m.CallDate))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Transcript is one loaded call transcript. It is passed by value and never mutated after loading.
// InputError is set when the file could not be read; such a transcript has no text.
type Transcript struct {
	Filename    string             `json:"filename"`
	RawText     string             `json:"raw_text"`
	Format      Format             `json:"format"`
	CleanedText string             `json:"cleaned_text"`
	Metadata    TranscriptMetadata `json:"metadata"`
	InputError  string             `json:"input_error,omitempty"`
}

// Unreadable reports whether the transcript failed to load
func (t Transcript) Unreadable() bool {
	return t.InputError != ""
}

// BaseName returns the filename without directories
func (t Transcript) BaseName() string {
	return filepath.Base(t.Filename)
}
