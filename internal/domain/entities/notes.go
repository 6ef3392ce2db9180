package entities

import (
	"strings"
	"time"
)

// Confidence is the model's self-reported confidence in a note record
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence maps free text onto a Confidence, defaulting to medium
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceLow:
		return ConfidenceLow
	case ConfidenceHigh:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

// OpportunityNotes is the structured record generated for one transcript.
// A non-empty Error marks a failed generation; content fields are then empty.
type OpportunityNotes struct {
	OpportunityName string `json:"opportunity_name"`
	AccountName     string `json:"account_name"`
	OpportunityID   string `json:"opportunity_id"`

	ExecutiveSummary            string   `json:"executive_summary"`
	OpportunityComments         string   `json:"opportunity_comments"`
	CustomerPain                []string `json:"customer_pain"`
	UseCases                    []string `json:"use_cases"`
	Stakeholders                []string `json:"stakeholders"`
	CompetitorsOrAlternatives   []string `json:"competitors_or_alternatives"`
	ProductsOrFeaturesDiscussed []string `json:"products_or_features_discussed"`
	RisksOrBlockers             []string `json:"risks_or_blockers"`
	NextSteps                   []string `json:"next_steps"`
	OpenQuestions               []string `json:"open_questions"`

	Confidence Confidence `json:"confidence"`
	Tags       []string   `json:"tags"`

	ModelName      string    `json:"model_name"`
	RawOutput      string    `json:"raw_output,omitempty"`
	SourceFilename string    `json:"source_filename"`
	GeneratedAt    time.Time `json:"generated_at"`
	Error          string    `json:"error,omitempty"`
}

// NewFailedNotes builds the record kept for a transcript whose generation failed
func NewFailedNotes(t Transcript, modelName string, cause error, at time.Time) OpportunityNotes {
	msg := "generation failed"
	if cause != nil {
		msg = cause.Error()
	}
	n := OpportunityNotes{
		OpportunityName: t.Metadata.OpportunityName,
		AccountName:     t.Metadata.AccountName,
		OpportunityID:   t.Metadata.OpportunityID,
		ModelName:       modelName,
		SourceFilename:  t.Filename,
		GeneratedAt:     at,
		Error:           msg,
	}
	n.EnsureLists()
	return n
}

// Failed reports whether generation failed for this record
func (n OpportunityNotes) Failed() bool {
	return n.Error != ""
}

// HasOpportunityRef reports whether the record names an opportunity to look up
func (n OpportunityNotes) HasOpportunityRef() bool {
	return strings.TrimSpace(n.OpportunityID) != "" || strings.TrimSpace(n.OpportunityName) != ""
}

// OpportunityRef returns a human readable reference for logs and outcomes
func (n OpportunityNotes) OpportunityRef() string {
	if id := strings.TrimSpace(n.OpportunityID); id != "" {
		return id
	}
	return strings.TrimSpace(n.OpportunityName)
}

// EnsureLists replaces nil list fields with empty slices so they serialise as []
func (n *OpportunityNotes) EnsureLists() {
	for _, l := range []*[]string{
		&n.CustomerPain, &n.UseCases, &n.Stakeholders, &n.CompetitorsOrAlternatives,
		&n.ProductsOrFeaturesDiscussed, &n.RisksOrBlockers, &n.NextSteps, &n.OpenQuestions, &n.Tags,
	} {
		if *l == nil {
			*l = make([]string, 0)
		}
	}
	if n.Confidence == "" {
		n.Confidence = ConfidenceMedium
	}
}
