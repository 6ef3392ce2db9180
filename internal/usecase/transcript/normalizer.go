package transcript

import (
	"regexp"
	"strings"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// Normalizer strips the decoration of one transcript format down to dialogue text.
type Normalizer interface {
	// Normalize returns the cleaned text for raw.
	Normalize(raw string) string

	// Format returns the format this normalizer handles.
	Format() entities.Format
}

var (
	vttHeaderRe    = regexp.MustCompile(`(?i)^\x{feff}?WEBVTT\b.*$`)
	vttTimestampRe = regexp.MustCompile(`^(\d{2,}:)?\d{2}:\d{2}\.\d{3}\s+-->\s+(\d{2,}:)?\d{2}:\d{2}\.\d{3}.*$`)
	vttSettingsRe  = regexp.MustCompile(`(?i)^(align|position|size|line|region|vertical):\S*(\s+\w+:\S*)*\s*$`)
	vttVoiceRe     = regexp.MustCompile(`<v(?:\.[\w.-]+)?\s+([^>]+)>`)
	vttTagRe       = regexp.MustCompile(`</?[a-zA-Z][^>]*>|<\d{2,}:\d{2}[:.\d]*>`)

	srtIndexRe     = regexp.MustCompile(`^\d+\s*$`)
	srtTimestampRe = regexp.MustCompile(`^\d{2,}:\d{2}:\d{2}[,.]\d{3}\s*-->\s*\d{2,}:\d{2}:\d{2}[,.]\d{3}.*$`)

	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)
	trailingSpaceRe   = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe        = regexp.MustCompile(`\n{3,}`)
)

var normalizers = map[entities.Format]Normalizer{
	entities.FormatPlain: plainNormalizer{},
	entities.FormatVTT:   vttNormalizer{},
	entities.FormatSRT:   srtNormalizer{},
}

// Normalize cleans raw according to format. Unknown formats return raw unchanged.
func Normalize(raw string, format entities.Format) string {
	n, ok := normalizers[format]
	if !ok {
		return raw
	}
	return n.Normalize(raw)
}

// NormalizeWhitespace unifies line endings, collapses horizontal whitespace,
// caps blank runs at one empty line and trims the result.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	text = trailingSpaceRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

type plainNormalizer struct{}

func (plainNormalizer) Format() entities.Format { return entities.FormatPlain }

// Plain text is already dialogue.
func (plainNormalizer) Normalize(raw string) string { return raw }

type vttNormalizer struct{}

func (vttNormalizer) Format() entities.Format { return entities.FormatVTT }

func (vttNormalizer) Normalize(raw string) string {
	lines := splitLines(raw)
	kept := make([]string, 0, len(lines))

	inBlock := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		// NOTE, STYLE and REGION blocks run until the next blank line.
		if inBlock {
			if trimmed == "" {
				inBlock = false
			}
			continue
		}
		if trimmed == "NOTE" || strings.HasPrefix(trimmed, "NOTE ") ||
			trimmed == "STYLE" || trimmed == "REGION" {
			inBlock = true
			continue
		}

		switch {
		case vttHeaderRe.MatchString(trimmed):
			continue
		case vttTimestampRe.MatchString(trimmed):
			continue
		case vttSettingsRe.MatchString(trimmed):
			continue
		case trimmed != "" && i+1 < len(lines) && vttTimestampRe.MatchString(strings.TrimSpace(lines[i+1])):
			// cue identifier
			continue
		}

		kept = append(kept, stripCueTags(line))
	}

	return NormalizeWhitespace(strings.Join(kept, "\n"))
}

// stripCueTags turns <v Speaker> voice spans into "Speaker: " and drops other markup.
func stripCueTags(line string) string {
	line = vttVoiceRe.ReplaceAllString(line, "$1: ")
	return vttTagRe.ReplaceAllString(line, "")
}

type srtNormalizer struct{}

func (srtNormalizer) Format() entities.Format { return entities.FormatSRT }

func (srtNormalizer) Normalize(raw string) string {
	lines := splitLines(raw)
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if srtTimestampRe.MatchString(trimmed) {
			continue
		}
		// A numeric line is a sequence number only when a timing line follows; otherwise it is dialogue.
		if srtIndexRe.MatchString(trimmed) && i+1 < len(lines) && srtTimestampRe.MatchString(strings.TrimSpace(lines[i+1])) {
			continue
		}
		kept = append(kept, line)
	}
	return NormalizeWhitespace(strings.Join(kept, "\n"))
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return strings.Split(raw, "\n")
}
