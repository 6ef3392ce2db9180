package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

func TestParse_StrictJSON(t *testing.T) {
	raw := `{"opportunity_name":"Acme","executive_summary":"Good call.","next_steps":["Send pricing","Book demo"],"confidence":"HIGH","tags":["q3"]}`

	n := NewParser().Parse(raw)
	assert.Equal(t, "Acme", n.OpportunityName)
	assert.Equal(t, "Good call.", n.ExecutiveSummary)
	assert.Equal(t, []string{"Send pricing", "Book demo"}, n.NextSteps)
	assert.Equal(t, entities.ConfidenceHigh, n.Confidence)
	assert.Equal(t, []string{"q3"}, n.Tags)
	assert.NotNil(t, n.RisksOrBlockers)
	assert.Empty(t, n.RisksOrBlockers)
}

func TestParse_CodeFenceAndLenientLists(t *testing.T) {
	raw := "```json\n" + `{
  "executive_summary": "Summary here.",
  "risks_or_blockers": "- Budget freeze\n• Security review\n\n",
  "stakeholders": "CTO",
  "use_cases": ["Reporting", null, "  "],
  "customer_pain": 42,
  "confidence": "certain"
}` + "\n```"

	n := NewParser().Parse(raw)
	assert.Equal(t, "Summary here.", n.ExecutiveSummary)
	assert.Equal(t, []string{"Budget freeze", "Security review"}, n.RisksOrBlockers)
	assert.Equal(t, []string{"CTO"}, n.Stakeholders)
	assert.Equal(t, []string{"Reporting"}, n.UseCases)
	assert.Equal(t, []string{"42"}, n.CustomerPain)
	assert.Equal(t, entities.ConfidenceMedium, n.Confidence)
}

func TestParse_JSONWrappedInProse(t *testing.T) {
	raw := `Here are the notes: {"executive_summary": "Wrapped."} Let me know!`
	assert.Equal(t, "Wrapped.", NewParser().Parse(raw).ExecutiveSummary)
}

func TestParse_HeadingFallback(t *testing.T) {
	raw := `Summary: Customer wants faster dashboards.

## Next Steps
- Send pricing
- Schedule deep dive

## Risks / Blockers
* Budget approval

Opportunity Comments:
MQ - 2025.02.03
* Deep dive Friday

Confidence: high
Tags: renewal, q3`

	n := NewParser().Parse(raw)
	assert.Equal(t, "Customer wants faster dashboards.", n.ExecutiveSummary)
	assert.Equal(t, []string{"Send pricing", "Schedule deep dive"}, n.NextSteps)
	assert.Equal(t, []string{"Budget approval"}, n.RisksOrBlockers)
	assert.Equal(t, "MQ - 2025.02.03\n* Deep dive Friday", n.OpportunityComments)
	assert.Equal(t, entities.ConfidenceHigh, n.Confidence)
	assert.Equal(t, []string{"renewal", "q3"}, n.Tags)
}

func TestParse_UnstructuredProse(t *testing.T) {
	n := NewParser().Parse("The call went well.\nThey  liked the demo.")
	assert.Equal(t, "The call went well. They liked the demo.", n.ExecutiveSummary)
	assert.Empty(t, n.NextSteps)
}

func TestParse_Empty(t *testing.T) {
	n := NewParser().Parse("   ")
	assert.Empty(t, n.ExecutiveSummary)
	assert.Equal(t, entities.ConfidenceMedium, n.Confidence)
	assert.NotNil(t, n.Tags)
}
