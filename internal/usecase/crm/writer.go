package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

// Client is the subset of the CRM REST API the writer needs
type Client interface {
	Query(ctx context.Context, soql string) ([]map[string]interface{}, error)
	UpdateRecord(ctx context.Context, object, id string, fields map[string]interface{}) error
}

// Mapping names the object holding opportunity comments and its fields
type Mapping struct {
	Object        string
	LookupField   string
	CommentsField string
	// AppendMode prepends new entries; when false the field is overwritten
	AppendMode bool
}

// Validate reports a missing API name
func (m Mapping) Validate() error {
	if m.Object == "" || m.LookupField == "" || m.CommentsField == "" {
		return errors.New("object, lookup field and comments field API names are required")
	}
	return nil
}

// Writer pushes opportunity comments onto the latest assessment record
type Writer struct {
	client  Client
	mapping Mapping
	logger  *zap.Logger
}

// NewWriter creates a Writer
func NewWriter(client Client, mapping Mapping, logger *zap.Logger) *Writer {
	return &Writer{client: client, mapping: mapping, logger: logger}
}

// Push writes one note. No write happens unless both the opportunity and its
// assessment record resolve.
func (w *Writer) Push(ctx context.Context, note entities.OpportunityNotes) (entities.PushOutcome, error) {
	outcome := entities.PushOutcome{OpportunityRef: note.OpportunityRef()}

	if !note.HasOpportunityRef() {
		outcome.Status = entities.PushSkipped
		outcome.Reason = entities.ReasonNoOpportunityRef
		outcome.Detail = "Missing opportunity_name and opportunity_id (cannot lookup Opportunity)."
		return outcome, nil
	}

	oppID, err := w.findOpportunity(ctx, note)
	if err != nil {
		return w.failed(outcome, err), err
	}
	outcome.OpportunityID = oppID

	recordID, existing, err := w.findAssessment(ctx, oppID)
	if err != nil {
		return w.failed(outcome, err), err
	}
	outcome.AssessmentID = recordID

	merged := MergeComments(existing, note.OpportunityComments, w.mapping.AppendMode)
	fields := map[string]interface{}{w.mapping.CommentsField: merged}
	if err := w.client.UpdateRecord(ctx, w.mapping.Object, recordID, fields); err != nil {
		err = fmt.Errorf("%w: %s %s: %v", entities.ErrWriteRejected, w.mapping.Object, recordID, err)
		return w.failed(outcome, err), err
	}

	if w.logger != nil {
		w.logger.Info("✅ Opportunity comments updated",
			zap.String("opportunity_id", oppID),
			zap.String("record_id", recordID),
		)
	}
	outcome.Status = entities.PushUpdated
	outcome.Detail = "Updated Solution Assessment Opportunity Comments."
	return outcome, nil
}

// PushAll pushes every note and returns one outcome per note in order.
// Notes whose generation failed are skipped.
func (w *Writer) PushAll(ctx context.Context, notes []entities.OpportunityNotes) []entities.PushOutcome {
	outcomes := make([]entities.PushOutcome, 0, len(notes))
	for i, n := range notes {
		var outcome entities.PushOutcome
		if n.Failed() {
			outcome = entities.PushOutcome{
				OpportunityRef: n.OpportunityRef(),
				Status:         entities.PushSkipped,
				Reason:         entities.ReasonGenerationFailed,
				Detail:         "Notes generation failed: " + n.Error,
			}
		} else {
			outcome, _ = w.Push(ctx, n)
		}
		outcome.Index = i
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (w *Writer) failed(outcome entities.PushOutcome, err error) entities.PushOutcome {
	outcome.Reason = entities.ReasonFor(err)
	switch outcome.Reason {
	case entities.ReasonOpportunityNotFound,
		entities.ReasonOpportunityAmbiguous,
		entities.ReasonAssessmentNotFound:
		outcome.Status = entities.PushSkipped
	default:
		outcome.Status = entities.PushError
	}
	outcome.Detail = err.Error()

	if w.logger != nil {
		w.logger.Warn("⚠️ Opportunity comments not pushed",
			zap.String("opportunity", outcome.OpportunityRef),
			zap.String("status", string(outcome.Status)),
			zap.Error(err),
		)
	}
	return outcome
}

// findOpportunity resolves by id when present, otherwise by name and account.
// A name must match exactly one opportunity.
func (w *Writer) findOpportunity(ctx context.Context, note entities.OpportunityNotes) (string, error) {
	if id := strings.TrimSpace(note.OpportunityID); id != "" {
		soql := "SELECT Id, Name, Account.Name FROM Opportunity WHERE Id = " + QuoteSOQL(id) + " LIMIT 1"
		records, err := w.client.Query(ctx, soql)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "", fmt.Errorf("%w: id %s", entities.ErrOpportunityNotFound, id)
		}
		return recordID(records[0]), nil
	}

	name := strings.TrimSpace(note.OpportunityName)
	where := "Name = " + QuoteSOQL(name)
	if account := strings.TrimSpace(note.AccountName); account != "" {
		where += " AND Account.Name = " + QuoteSOQL(account)
	}
	soql := "SELECT Id, Name, Account.Name FROM Opportunity WHERE " + where + " ORDER BY LastModifiedDate DESC LIMIT 5"

	records, err := w.client.Query(ctx, soql)
	if err != nil {
		return "", err
	}
	switch len(records) {
	case 0:
		return "", fmt.Errorf("%w: name %q", entities.ErrOpportunityNotFound, name)
	case 1:
		return recordID(records[0]), nil
	default:
		return "", fmt.Errorf("%w: %d opportunities named %q; provide the opportunity id", entities.ErrOpportunityAmbiguous, len(records), name)
	}
}

func (w *Writer) findAssessment(ctx context.Context, oppID string) (string, string, error) {
	soql := fmt.Sprintf("SELECT Id, %s FROM %s WHERE %s = %s ORDER BY LastModifiedDate DESC LIMIT 1",
		w.mapping.CommentsField, w.mapping.Object, w.mapping.LookupField, QuoteSOQL(oppID))

	records, err := w.client.Query(ctx, soql)
	if err != nil {
		return "", "", err
	}
	if len(records) == 0 {
		return "", "", fmt.Errorf("%w: opportunity %s", entities.ErrAssessmentNotFound, oppID)
	}
	existing, _ := records[0][w.mapping.CommentsField].(string)
	return recordID(records[0]), existing, nil
}

// MergeComments puts newBlock above existing, separated by a blank line.
// An empty newBlock leaves existing untouched; appendMode false overwrites.
func MergeComments(existing, newBlock string, appendMode bool) string {
	existing = strings.TrimSpace(existing)
	newBlock = strings.TrimSpace(newBlock)
	switch {
	case newBlock == "":
		return existing
	case existing == "", !appendMode:
		return newBlock
	default:
		return newBlock + "\n\n" + existing
	}
}

// QuoteSOQL renders value as a SOQL string literal
func QuoteSOQL(value string) string {
	v := strings.ReplaceAll(value, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func recordID(record map[string]interface{}) string {
	id, _ := record["Id"].(string)
	return id
}
