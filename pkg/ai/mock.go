package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

const mockName = "mock"

// MockGenerator is an offline backend. It builds a fully populated JSON document
// from the prompt alone, so the same prompt always yields the same completion.
type MockGenerator struct{}

// NewMockGenerator creates the offline backend
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Name returns the model name recorded on generated notes
func (m *MockGenerator) Name() string {
	return mockName
}

type mockMetadata struct {
	OpportunityName string `json:"opportunity_name"`
	AccountName     string `json:"account_name"`
	OpportunityID   string `json:"opportunity_id"`
	Source          string `json:"source"`
	Stage           string `json:"stage"`
}

var (
	sentenceSplitRe = regexp.MustCompile(`([.!?])\s+`)
	spaceRunRe      = regexp.MustCompile(`\s+`)
	speakerRe       = regexp.MustCompile(`^([A-Z][\w.'-]*(?: [A-Z][\w.'-]*){0,3}):\s`)

	painPatterns       = compileAll(`\bpain\b`, `\bproblem`, `\bchalleng`, `\bstruggl`, `\bcosts?\b`, `\bslow\b`, `\bmanual\b`)
	useCasePatterns    = compileAll(`\buse case`, `\bwant to\b`, `\bneed to\b`, `\blooking to\b`, `\bgoal\b`)
	competitorPatterns = compileAll(`\bcompetitor`, `\balternative`, `\bversus\b`, `\bvs\.?\s`, `\bcurrently using\b`, `\bevaluating\b`)
	productPatterns    = compileAll(`\bproduct`, `\bfeature`, `\bplatform\b`, `\bintegration`, `\bdashboard`, `\bapi\b`)
	riskPatterns       = compileAll(`\brisk`, `\bblocker`, `\bconcern`, `\bbudget\b`, `\bsecurity\b`, `\bdelay`, `\blegal\b`)
	nextStepPatterns   = compileAll(`\bnext steps?\b`, `\baction items?\b`, `\bfollow[- ]?up\b`, `\bwe will\b`, `\bschedule\b`)
	questionPatterns   = compileAll(`\?\s*$`, `\bopen question\b`, `\bquestion\b`, `\bunknown\b`, `\bunclear\b`)
)

// Complete returns a JSON completion derived from the transcript and metadata sections of prompt
func (m *MockGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	md := mockExtractMetadata(prompt)
	text := mockExtractTranscript(prompt)

	summary := firstSentences(text, 260)
	if summary == "" {
		summary = "Transcript uploaded with no dialogue. Enable an LLM backend for real summarization."
	}

	nextSteps := linesMatching(text, nextStepPatterns, 6, "Review transcript and confirm next steps")
	risks := linesMatching(text, riskPatterns, 6, "No risks or blockers detected")

	doc := map[string]interface{}{
		"opportunity_name":               orDefault(md.OpportunityName, "Unnamed opportunity"),
		"account_name":                   orDefault(md.AccountName, "Unknown account"),
		"opportunity_id":                 md.OpportunityID,
		"executive_summary":              summary,
		"opportunity_comments":           mockComments(nextSteps, risks),
		"customer_pain":                  linesMatching(text, painPatterns, 6, "No customer pain detected"),
		"use_cases":                      linesMatching(text, useCasePatterns, 6, "No use cases detected"),
		"stakeholders":                   speakers(text, "Unknown speaker"),
		"competitors_or_alternatives":    linesMatching(text, competitorPatterns, 5, "None mentioned"),
		"products_or_features_discussed": linesMatching(text, productPatterns, 6, "None mentioned"),
		"risks_or_blockers":              risks,
		"next_steps":                     nextSteps,
		"open_questions":                 linesMatching(text, questionPatterns, 5, "None captured"),
		"confidence":                     "low",
		"tags":                           []string{mockName, orDefault(md.Source, "other")},
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func mockComments(nextSteps, risks []string) string {
	bullets := []string{
		"* " + clip(nextSteps[0], 110),
		"* " + clip(risks[0], 110),
		"* Enable an LLM backend (Cortex/OpenAI) for real summaries",
	}
	return strings.Join(bullets, "\n")
}

func mockExtractTranscript(prompt string) string {
	i := strings.LastIndex(prompt, "\n"+PromptTranscriptMarker+"\n")
	if i < 0 {
		if strings.HasPrefix(prompt, PromptTranscriptMarker+"\n") {
			return strings.TrimSpace(strings.TrimPrefix(prompt, PromptTranscriptMarker+"\n"))
		}
		return strings.TrimSpace(prompt)
	}
	return strings.TrimSpace(prompt[i+len(PromptTranscriptMarker)+2:])
}

func mockExtractMetadata(prompt string) mockMetadata {
	var md mockMetadata
	i := strings.Index(prompt, PromptMetadataMarker)
	if i < 0 {
		return md
	}
	rest := strings.TrimLeft(prompt[i+len(PromptMetadataMarker):], " \r\n")
	line := rest
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		line = rest[:j]
	}
	_ = json.Unmarshal([]byte(line), &md)
	return md
}

func firstSentences(text string, maxChars int) string {
	t := strings.TrimSpace(spaceRunRe.ReplaceAllString(text, " "))
	if t == "" {
		return ""
	}
	parts := strings.Split(sentenceSplitRe.ReplaceAllString(t, "$1\n"), "\n")
	out := ""
	for i, p := range parts {
		if i == 3 {
			break
		}
		candidate := strings.TrimSpace(out + " " + p)
		if len(candidate) > maxChars && out != "" {
			break
		}
		out = candidate
		if len(out) >= maxChars {
			break
		}
	}
	return clip(out, maxChars)
}

func linesMatching(text string, patterns []*regexp.Regexp, limit int, fallback string) []string {
	hits := make([]string, 0, limit)
	seen := make(map[string]bool)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.Trim(raw, "-•* \t"))
		if len(line) < 5 {
			continue
		}
		low := strings.ToLower(line)
		for _, p := range patterns {
			if !p.MatchString(low) {
				continue
			}
			clipped := clip(spaceRunRe.ReplaceAllString(line, " "), 140)
			if !seen[clipped] {
				seen[clipped] = true
				hits = append(hits, clipped)
			}
			break
		}
		if len(hits) >= limit {
			break
		}
	}
	if len(hits) == 0 {
		return []string{fallback}
	}
	return hits
}

func speakers(text, fallback string) []string {
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		m := speakerRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	if len(names) == 0 {
		return []string{fallback}
	}
	return names
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
