package transcript

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

const maxGuessedNameLen = 80

// DetectFormat maps a filename extension onto a transcript format
func DetectFormat(filename string) entities.Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".vtt":
		return entities.FormatVTT
	case ".srt":
		return entities.FormatSRT
	default:
		return entities.FormatPlain
	}
}

// Decode turns uploaded bytes into text. UTF-16 with a byte order mark and
// UTF-8 are decoded as such; anything else that is not valid UTF-8 is read as Latin-1.
func Decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", fmt.Errorf("decode utf-16: %w", err)
		}
		return string(out), nil
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}

	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(out), nil
}

// Load decodes data, detects its format from filename and returns the normalized transcript
func Load(filename string, data []byte, md entities.TranscriptMetadata) (entities.Transcript, error) {
	text, err := Decode(data)
	if err != nil {
		return entities.Transcript{}, err
	}
	return FromText(filename, text, md), nil
}

// FromText builds a transcript from already decoded text
func FromText(filename, text string, md entities.TranscriptMetadata) entities.Transcript {
	format := DetectFormat(filename)
	return entities.Transcript{
		Filename:    filename,
		RawText:     text,
		Format:      format,
		CleanedText: Normalize(text, format),
		Metadata:    withDefaults(filename, md),
	}
}

// Unreadable builds the placeholder for a file that could not be read, so the
// failure is recorded on that transcript's note instead of rejecting the batch.
func Unreadable(filename string, md entities.TranscriptMetadata, cause error) entities.Transcript {
	msg := "unreadable file"
	if cause != nil {
		msg = cause.Error()
	}
	return entities.Transcript{
		Filename:   filename,
		Format:     DetectFormat(filename),
		Metadata:   withDefaults(filename, md),
		InputError: msg,
	}
}

func withDefaults(filename string, md entities.TranscriptMetadata) entities.TranscriptMetadata {
	if strings.TrimSpace(md.OpportunityName) == "" && strings.TrimSpace(md.OpportunityID) == "" {
		md.OpportunityName = GuessOpportunityName(filename)
	}
	if md.Source == "" {
		md.Source = entities.SourceOther
	}
	return md
}

// GuessOpportunityName derives a default opportunity name from an uploaded filename
func GuessOpportunityName(filename string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.TrimSpace(base)

	if utf8.RuneCountInString(base) > maxGuessedNameLen {
		runes := []rune(base)
		base = strings.TrimSpace(string(runes[:maxGuessedNameLen]))
	}
	return base
}
