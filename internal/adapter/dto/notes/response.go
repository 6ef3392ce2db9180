package notes

import (
	"time"

	"github.com/johnquangdev/opportunity-notes/errors"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// RunResponse is a saved run without its transcript text
type RunResponse struct {
	RunID     string                      `json:"run_id"`
	CreatedAt time.Time                   `json:"created_at"`
	ModelName string                      `json:"model_name"`
	NoteCount int                         `json:"note_count"`
	Failed    int                         `json:"failed"`
	Notes     []entities.OpportunityNotes `json:"notes"`
}

// NewRunResponse builds the response for run
func NewRunResponse(run *entities.RunResult) RunResponse {
	summary := run.Summary()
	return RunResponse{
		RunID:     run.RunID,
		CreatedAt: run.CreatedAt,
		ModelName: run.ModelName,
		NoteCount: summary.NoteCount,
		Failed:    summary.Failed,
		Notes:     run.Notes,
	}
}

// RunListResponse lists saved runs newest first
type RunListResponse struct {
	Runs  []entities.RunSummary `json:"runs"`
	Count int                   `json:"count"`
}

// PushResponse reports per-note outcomes of a push
type PushResponse struct {
	RunID    string                `json:"run_id"`
	Outcomes []PushOutcomeResponse `json:"outcomes"`
	Summary  entities.PushSummary  `json:"summary"`
}

// PushOutcomeResponse is one outcome plus the error code for its reason.
// Code is omitted for updated notes.
type PushOutcomeResponse struct {
	entities.PushOutcome
	Code errors.ErrorCode `json:"code,omitempty"`
}

var pushReasonCodes = map[entities.PushReason]errors.ErrorCode{
	entities.ReasonNoOpportunityRef:     errors.ErrorCode_INVALID_ARGUMENT,
	entities.ReasonGenerationFailed:     errors.ErrorCode_GENERATION_FAILED,
	entities.ReasonOpportunityNotFound:  errors.ErrorCode_CRM_OPPORTUNITY_NOTFOUND,
	entities.ReasonOpportunityAmbiguous: errors.ErrorCode_CRM_OPPORTUNITY_AMBIG,
	entities.ReasonAssessmentNotFound:   errors.ErrorCode_CRM_ASSESSMENT_NOTFOUND,
	entities.ReasonWriteRejected:        errors.ErrorCode_CRM_WRITE_REJECTED,
	entities.ReasonRequestFailed:        errors.ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
}

// PushReasonCode returns the error code for reason, or 0 for none
func PushReasonCode(reason entities.PushReason) errors.ErrorCode {
	return pushReasonCodes[reason]
}

// NewPushResponse builds the response for a push of runID
func NewPushResponse(runID string, outcomes []entities.PushOutcome) PushResponse {
	resp := PushResponse{
		RunID:    runID,
		Outcomes: make([]PushOutcomeResponse, 0, len(outcomes)),
		Summary:  entities.Summarize(outcomes),
	}
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, PushOutcomeResponse{PushOutcome: o, Code: PushReasonCode(o.Reason)})
	}
	return resp
}
