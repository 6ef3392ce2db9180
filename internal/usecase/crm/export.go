package crm

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// ExportTimestampLayout is embedded in export file names
const ExportTimestampLayout = "20060102T150405Z"

const listSeparator = "; "

// ExportColumns is the CSV header, in order
var ExportColumns = []string{
	"opportunity_name",
	"account_name",
	"opportunity_id",
	"executive_summary",
	"opportunity_comments",
	"customer_pain",
	"use_cases",
	"stakeholders",
	"competitors_or_alternatives",
	"products_or_features_discussed",
	"risks_or_blockers",
	"next_steps",
	"open_questions",
	"confidence",
	"tags",
	"model_name",
	"source_filename",
	"error",
}

// ExportRow flattens one note into CSV cells matching ExportColumns
func ExportRow(n entities.OpportunityNotes) []string {
	confidence := string(n.Confidence)
	if n.Failed() {
		confidence = ""
	}
	return []string{
		n.OpportunityName,
		n.AccountName,
		n.OpportunityID,
		n.ExecutiveSummary,
		n.OpportunityComments,
		strings.Join(n.CustomerPain, listSeparator),
		strings.Join(n.UseCases, listSeparator),
		strings.Join(n.Stakeholders, listSeparator),
		strings.Join(n.CompetitorsOrAlternatives, listSeparator),
		strings.Join(n.ProductsOrFeaturesDiscussed, listSeparator),
		strings.Join(n.RisksOrBlockers, listSeparator),
		strings.Join(n.NextSteps, listSeparator),
		strings.Join(n.OpenQuestions, listSeparator),
		confidence,
		strings.Join(n.Tags, listSeparator),
		n.ModelName,
		n.SourceFilename,
		n.Error,
	}
}

// ExportCSV writes a header and one row per note, failed notes included
func ExportCSV(w io.Writer, notes []entities.OpportunityNotes) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, n := range notes {
		if err := cw.Write(ExportRow(n)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename returns sfdc_notes_<UTC timestamp>.csv
func ExportFilename(now time.Time) string {
	return "sfdc_notes_" + now.UTC().Format(ExportTimestampLayout) + ".csv"
}

// WriteCSVFile exports notes into dir, creating it if needed, and returns the file path
func WriteCSVFile(dir string, notes []entities.OpportunityNotes, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create outputs dir: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := ExportCSV(f, notes); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
