package entities

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Run errors
	ErrRunNotFound   = errors.New("run not found")
	ErrNoteIndex     = errors.New("note index out of range")
	ErrNoTranscripts = errors.New("no transcripts supplied")

	// Transcript errors
	ErrTranscriptUnreadable = errors.New("transcript could not be read")

	// Generation errors
	ErrAlreadyGenerated = errors.New("notes already generated for transcript")

	// CRM errors
	ErrOpportunityNotFound  = errors.New("opportunity not found")
	ErrOpportunityAmbiguous = errors.New("opportunity name is ambiguous")
	ErrAssessmentNotFound   = errors.New("solution assessment not found")
	ErrWriteRejected        = errors.New("crm rejected write")
)

// GenerationErrorKind classifies why a backend call failed
type GenerationErrorKind string

const (
	GenerationAuth      GenerationErrorKind = "auth"
	GenerationRateLimit GenerationErrorKind = "rate_limit"
	GenerationNetwork   GenerationErrorKind = "network"
	GenerationBackend   GenerationErrorKind = "backend"
	GenerationInternal  GenerationErrorKind = "internal"
)

// GenerationError is a failed generation for a single transcript
type GenerationError struct {
	Filename string
	Backend  string
	Kind     GenerationErrorKind
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed for %s (%s): %v", e.Backend, e.Filename, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
