package entities

import "errors"

// PushStatus is the result of writing one note record to the CRM
type PushStatus string

const (
	PushUpdated PushStatus = "updated"
	PushSkipped PushStatus = "skipped"
	PushError   PushStatus = "error"
)

// PushReason says why a note was not written
type PushReason string

const (
	ReasonNoOpportunityRef     PushReason = "no_opportunity_ref"
	ReasonGenerationFailed     PushReason = "generation_failed"
	ReasonOpportunityNotFound  PushReason = "opportunity_not_found"
	ReasonOpportunityAmbiguous PushReason = "opportunity_ambiguous"
	ReasonAssessmentNotFound   PushReason = "assessment_not_found"
	ReasonWriteRejected        PushReason = "write_rejected"
	ReasonRequestFailed        PushReason = "request_failed"
)

// ReasonFor maps a push error onto its PushReason
func ReasonFor(err error) PushReason {
	switch {
	case errors.Is(err, ErrOpportunityNotFound):
		return ReasonOpportunityNotFound
	case errors.Is(err, ErrOpportunityAmbiguous):
		return ReasonOpportunityAmbiguous
	case errors.Is(err, ErrAssessmentNotFound):
		return ReasonAssessmentNotFound
	case errors.Is(err, ErrWriteRejected):
		return ReasonWriteRejected
	default:
		return ReasonRequestFailed
	}
}

// PushOutcome reports what happened to one note during a push.
// Reason is empty when the note was written.
type PushOutcome struct {
	Index          int        `json:"index"`
	OpportunityRef string     `json:"opportunity_ref"`
	Status         PushStatus `json:"status"`
	Reason         PushReason `json:"reason,omitempty"`
	Detail         string     `json:"detail"`
	OpportunityID  string     `json:"opportunity_id,omitempty"`
	AssessmentID   string     `json:"assessment_id,omitempty"`
}

// PushSummary counts outcomes by status
type PushSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Summarize counts outcomes by status
func Summarize(outcomes []PushOutcome) PushSummary {
	var s PushSummary
	for _, o := range outcomes {
		switch o.Status {
		case PushUpdated:
			s.Updated++
		case PushSkipped:
			s.Skipped++
		default:
			s.Errors++
		}
	}
	return s
}
