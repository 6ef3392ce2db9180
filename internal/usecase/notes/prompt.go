package notes

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
)

const promptPreamble = `You are a Snowflake Sales Engineer / Snowflake engineer writing concise Salesforce pipeline notes.

Goal: produce VERY concise, high-signal notes that help an AE/SE update the opportunity quickly.

Constraints:
- Output MUST be valid JSON (no markdown, no code fences, no commentary).
- Keep executive_summary to 1-3 sentences.
- opportunity_comments MUST be a ready-to-paste Salesforce "Opportunity Comments" entry:
  - First line: "<INITIALS> - <YYYY.MM.DD>"
  - Then 2-4 bullets, each starting with "* "
  - Bullets should focus on next steps, risks/blockers, and critical updates for leadership
  - Keep each bullet <= ~18 words
- Prefer short bullet-like strings in arrays (max ~12 words each).
- If unknown, use empty string or empty array (not null), except call_date which is already provided above.
`

const schemaHint = `{"opportunity_name": "string", "account_name": "string", "executive_summary": "string (1-3 sentences)", ` +
	`"opportunity_comments": "string (SFDC block: 'XX - YYYY.MM.DD\\n* ...' with 2-4 concise bullets)", ` +
	`"customer_pain": ["string"], "use_cases": ["string"], "stakeholders": ["string"], ` +
	`"competitors_or_alternatives": ["string"], "products_or_features_discussed": ["string"], ` +
	`"risks_or_blockers": ["string"], "next_steps": ["string"], "open_questions": ["string"], ` +
	`"confidence": "low|medium|high", "tags": ["string"]}`

// promptMetadata is serialised in field order; absent call date renders as null
type promptMetadata struct {
	OpportunityName string  `json:"opportunity_name"`
	AccountName     string  `json:"account_name"`
	OpportunityID   string  `json:"opportunity_id,omitempty"`
	CallDate        *string `json:"call_date"`
	Source          string  `json:"source"`
	Owner           string  `json:"owner"`
	Stage           string  `json:"stage"`
	Filename        string  `json:"filename"`
}

// BuildPrompt renders the strict-JSON instruction prompt for one transcript
func BuildPrompt(t entities.Transcript) string {
	md := t.Metadata
	meta := promptMetadata{
		OpportunityName: md.OpportunityName,
		AccountName:     md.AccountName,
		OpportunityID:   md.OpportunityID,
		Source:          string(md.Source),
		Owner:           md.Owner,
		Stage:           md.Stage,
		Filename:        t.BaseName(),
	}
	if d, ok := md.ParsedCallDate(); ok {
		s := d.Format(entities.CallDateLayout)
		meta.CallDate = &s
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n")
	b.WriteString(ai.PromptMetadataMarker)
	b.WriteString("\n")
	b.WriteString(encodeMetadata(meta))
	b.WriteString("\n\nReturn JSON with this shape:\n")
	b.WriteString(schemaHint)
	b.WriteString("\n\n")
	b.WriteString(ai.PromptTranscriptMarker)
	b.WriteString("\n")
	b.WriteString(t.CleanedText)
	b.WriteString("\n")
	return b.String()
}

// encodeMetadata keeps non-ASCII names readable and the block on a single line
func encodeMetadata(meta promptMetadata) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(meta); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}
