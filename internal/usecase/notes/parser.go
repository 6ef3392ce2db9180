package notes

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// Parser turns raw model output into a note record. It never fails: fields it
// cannot recover are left empty.
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes raw as JSON when possible and falls back to heading matching
func (p *Parser) Parse(raw string) entities.OpportunityNotes {
	var notes entities.OpportunityNotes

	if obj, ok := decodeObject(raw); ok {
		notes = notesFromObject(obj)
	} else {
		notes = notesFromHeadings(raw)
	}

	notes.EnsureLists()
	return notes
}

func decodeObject(raw string) (map[string]interface{}, bool) {
	content := extractJSON(raw)
	if content == "" {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func notesFromObject(obj map[string]interface{}) entities.OpportunityNotes {
	return entities.OpportunityNotes{
		OpportunityName:             coerceString(obj["opportunity_name"]),
		AccountName:                 coerceString(obj["account_name"]),
		OpportunityID:               coerceString(obj["opportunity_id"]),
		ExecutiveSummary:            coerceString(obj["executive_summary"]),
		OpportunityComments:         coerceString(obj["opportunity_comments"]),
		CustomerPain:                coerceList(obj["customer_pain"]),
		UseCases:                    coerceList(obj["use_cases"]),
		Stakeholders:                coerceList(obj["stakeholders"]),
		CompetitorsOrAlternatives:   coerceList(obj["competitors_or_alternatives"]),
		ProductsOrFeaturesDiscussed: coerceList(obj["products_or_features_discussed"]),
		RisksOrBlockers:             coerceList(obj["risks_or_blockers"]),
		NextSteps:                   coerceList(obj["next_steps"]),
		OpenQuestions:               coerceList(obj["open_questions"]),
		Confidence:                  entities.ParseConfidence(coerceString(obj["confidence"])),
		Tags:                        coerceList(obj["tags"]),
	}
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []interface{}:
		return strings.Join(coerceList(val), "\n")
	default:
		return fmt.Sprint(val)
	}
}

// coerceList accepts an array, a newline separated string, or a single scalar
func coerceList(v interface{}) []string {
	out := make([]string, 0)
	switch val := v.(type) {
	case nil:
	case []interface{}:
		for _, item := range val {
			if item == nil {
				continue
			}
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(val, "\n") {
			if s := trimBullet(line); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := coerceString(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var (
	numberedRe = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
	boldRe     = regexp.MustCompile(`\*\*|__`)
)

func trimBullet(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "-•* \t")
	s = numberedRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionComments
	sectionPain
	sectionUseCases
	sectionStakeholders
	sectionCompetitors
	sectionProducts
	sectionRisks
	sectionNextSteps
	sectionQuestions
	sectionTags
	sectionConfidence
	sectionOpportunity
	sectionAccount
)

var sectionAliases = map[string]section{
	"summary":                        sectionSummary,
	"executive summary":              sectionSummary,
	"opportunity comments":           sectionComments,
	"comments":                       sectionComments,
	"customer pain":                  sectionPain,
	"pain points":                    sectionPain,
	"pain":                           sectionPain,
	"use cases":                      sectionUseCases,
	"use case":                       sectionUseCases,
	"stakeholders":                   sectionStakeholders,
	"competitors":                    sectionCompetitors,
	"competitors or alternatives":    sectionCompetitors,
	"alternatives":                   sectionCompetitors,
	"products":                       sectionProducts,
	"products or features discussed": sectionProducts,
	"products discussed":             sectionProducts,
	"risks":                          sectionRisks,
	"risks or blockers":              sectionRisks,
	"blockers":                       sectionRisks,
	"next steps":                     sectionNextSteps,
	"action items":                   sectionNextSteps,
	"open questions":                 sectionQuestions,
	"questions":                      sectionQuestions,
	"tags":                           sectionTags,
	"confidence":                     sectionConfidence,
	"opportunity":                    sectionOpportunity,
	"opportunity name":               sectionOpportunity,
	"account":                        sectionAccount,
	"account name":                   sectionAccount,
}

func lookupSection(name string) (section, bool) {
	key := strings.ToLower(strings.TrimSpace(boldRe.ReplaceAllString(name, "")))
	key = strings.NewReplacer("_", " ", "/", " or ", "&", "or").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	s, ok := sectionAliases[key]
	return s, ok
}

// notesFromHeadings recovers fields from markdown-ish prose such as
// "Summary: ..." or "## Next Steps" followed by bullet lines.
func notesFromHeadings(raw string) entities.OpportunityNotes {
	var (
		notes    entities.OpportunityNotes
		current  = sectionNone
		summary  []string
		comments []string
		matched  bool
	)

	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}

		if strings.HasPrefix(line, "#") {
			heading := strings.TrimSpace(strings.TrimRight(strings.TrimLeft(line, "#"), ":"))
			sec, ok := lookupSection(heading)
			if !ok {
				current = sectionNone
				continue
			}
			current, matched = sec, true
			continue
		}

		if idx := strings.Index(line, ":"); idx > 0 {
			if sec, ok := lookupSection(strings.TrimLeft(line[:idx], "-•* ")); ok {
				current, matched = sec, true
				rest := strings.TrimSpace(boldRe.ReplaceAllString(line[idx+1:], ""))
				if rest != "" {
					summary, comments = addToSection(&notes, current, rest, rest, summary, comments)
				}
				continue
			}
		}

		summary, comments = addToSection(&notes, current, line, trimBullet(line), summary, comments)
	}

	if !matched && text != "" {
		notes.ExecutiveSummary = strings.Join(strings.Fields(text), " ")
		return notes
	}

	notes.ExecutiveSummary = strings.Join(summary, " ")
	notes.OpportunityComments = strings.Join(comments, "\n")
	return notes
}

func addToSection(n *entities.OpportunityNotes, sec section, line, item string, summary, comments []string) ([]string, []string) {
	if item == "" {
		return summary, comments
	}
	switch sec {
	case sectionSummary:
		summary = append(summary, item)
	case sectionComments:
		comments = append(comments, line)
	case sectionPain:
		n.CustomerPain = append(n.CustomerPain, item)
	case sectionUseCases:
		n.UseCases = append(n.UseCases, item)
	case sectionStakeholders:
		n.Stakeholders = append(n.Stakeholders, item)
	case sectionCompetitors:
		n.CompetitorsOrAlternatives = append(n.CompetitorsOrAlternatives, item)
	case sectionProducts:
		n.ProductsOrFeaturesDiscussed = append(n.ProductsOrFeaturesDiscussed, item)
	case sectionRisks:
		n.RisksOrBlockers = append(n.RisksOrBlockers, item)
	case sectionNextSteps:
		n.NextSteps = append(n.NextSteps, item)
	case sectionQuestions:
		n.OpenQuestions = append(n.OpenQuestions, item)
	case sectionTags:
		for _, tag := range strings.Split(item, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				n.Tags = append(n.Tags, tag)
			}
		}
	case sectionConfidence:
		n.Confidence = entities.ParseConfidence(item)
	case sectionOpportunity:
		n.OpportunityName = item
	case sectionAccount:
		n.AccountName = item
	}
	return summary, comments
}

// extractJSON extracts JSON content from markdown code blocks or surrounding prose
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	if strings.HasPrefix(content, "{") {
		return content
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
