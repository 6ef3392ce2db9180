package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
)

const sampleVTT = "WEBVTT\n\n1\n00:00:01.000 --> 00:00:04.000\nAlice: Our main problem is slow dashboards.\n\n2\n00:00:05.000 --> 00:00:08.000\nBob: Next step is a technical deep dive on Friday.\n"

func setupCLIEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LLM_BACKEND", "mock")
	t.Setenv("TRANSCRIPTION_BACKEND", "none")
	t.Setenv("RUN_STORE", "file")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("ARCHIVE_ENABLED", "false")
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("OUTPUTS_DIR", filepath.Join(dir, "outputs"))
	t.Setenv("SFDC_INITIALS", "SE")
	t.Setenv("SALESFORCE_USERNAME", "")
	t.Setenv("SALESFORCE_SOLUTION_ASSESSMENT_OBJECT_API_NAME", "")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateListShowExport(t *testing.T) {
	dir := setupCLIEnv(t)
	path := writeFile(t, dir, "acme_renewal.vtt", sampleVTT)

	out, err := runCLI(t, "generate", "--json", "--owner", "MQ", "--call-date", "2025-02-03", "--account", "Acme", path)
	require.NoError(t, err)

	var run entities.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Len(t, run.Notes, 1)
	assert.Equal(t, "acme renewal", run.Notes[0].OpportunityName)
	assert.Equal(t, "Acme", run.Notes[0].AccountName)
	assert.True(t, strings.HasPrefix(run.Notes[0].OpportunityComments, "MQ - 2025.02.03\n"))

	out, err = runCLI(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, run.RunID)

	out, err = runCLI(t, "runs", "show", run.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "`+run.RunID+`"`)

	out, err = runCLI(t, "export", run.RunID)
	require.NoError(t, err)
	csvPath := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(filepath.Base(csvPath), "sfdc_notes_"))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(crm.ExportColumns, ",")))
}

func TestGenerate_MissingFileKeepsBatch(t *testing.T) {
	dir := setupCLIEnv(t)
	good := writeFile(t, dir, "good.txt", "Alice: we need faster dashboards.")
	gone := filepath.Join(dir, "gone.txt")

	out, err := runCLI(t, "generate", "--json", good, gone)
	require.NoError(t, err)

	var run entities.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Len(t, run.Notes, 2)
	assert.False(t, run.Notes[0].Failed())
	assert.True(t, run.Notes[1].Failed())
	assert.Contains(t, run.Notes[1].Error, "gone.txt")
	assert.Equal(t, "gone", run.Notes[1].OpportunityName)

	out, err = runCLI(t, "export", run.RunID)
	require.NoError(t, err)
	f, err := os.Open(strings.TrimSpace(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "good", rows[1][0])
	assert.Equal(t, "gone", rows[2][0])
	assert.NotEmpty(t, rows[2][len(rows[2])-1])
}

func TestGenerate_TableOutput(t *testing.T) {
	dir := setupCLIEnv(t)
	path := writeFile(t, dir, "globex.txt", "Carol: Budget is a concern.")

	out, err := runCLI(t, "generate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 notes, 0 failed")
	assert.Contains(t, out, "globex")
}

func TestGenerate_MetadataFile(t *testing.T) {
	dir := setupCLIEnv(t)
	a := writeFile(t, dir, "a.txt", "Alice: hello")
	b := writeFile(t, dir, "b.txt", "Bob: hi")
	md := writeFile(t, dir, "md.json", `[{"opportunity_name":"First"},{"opportunity_name":"Second","source":"gong"}]`)

	out, err := runCLI(t, "generate", "--json", "--metadata", md, a, b)
	require.NoError(t, err)

	var run entities.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Len(t, run.Notes, 2)
	assert.Equal(t, "First", run.Notes[0].OpportunityName)
	assert.Equal(t, "Second", run.Notes[1].OpportunityName)
}

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	md := writeFile(t, dir, "md.json", `[{},{}]`)
	_, err := loadMetadata(md, entities.TranscriptMetadata{}, 1)
	assert.ErrorContains(t, err, "2 entries for 1 files")

	_, err = loadMetadata("", entities.TranscriptMetadata{OpportunityID: "bad id"}, 1)
	assert.ErrorContains(t, err, "metadata[0]")

	out, err := loadMetadata("", entities.TranscriptMetadata{Owner: "MQ"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "MQ", out[1].Owner)
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "call.srt", "1\n00:00:01,000 --> 00:00:02,000\nAlice: hi there\n")

	out, err := runCLI(t, "normalize", path)
	require.NoError(t, err)
	assert.Equal(t, "Alice: hi there\n", out)
}

func TestTranscribe_Disabled(t *testing.T) {
	dir := setupCLIEnv(t)
	path := writeFile(t, dir, "call.mp3", "RIFF")

	_, err := runCLI(t, "transcribe", path)
	assert.ErrorIs(t, err, ai.ErrTranscriptionDisabled)
}

func TestPush_NotConfigured(t *testing.T) {
	dir := setupCLIEnv(t)
	path := writeFile(t, dir, "acme.txt", "Alice: hello")

	out, err := runCLI(t, "generate", "--json", path)
	require.NoError(t, err)
	var run entities.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &run))

	_, err = runCLI(t, "push", run.RunID)
	assert.ErrorIs(t, err, crm.ErrNotConfigured)
}

func TestPrintOutcomes_ShowsReason(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	printOutcomes(cmd, []entities.PushOutcome{
		{Index: 0, OpportunityRef: "Acme", Status: entities.PushUpdated, Detail: "ok"},
		{Index: 1, OpportunityRef: "Twin", Status: entities.PushSkipped, Reason: entities.ReasonOpportunityAmbiguous, Detail: "2 opportunities"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "REASON")
	assert.Equal(t, []string{"0", "Acme", "updated", "-", "ok"}, strings.Fields(lines[1]))
	assert.Contains(t, lines[2], "opportunity_ambiguous")
	assert.Equal(t, "1 updated, 1 skipped, 0 errors", lines[3])
}

func TestMigrate_SQLite(t *testing.T) {
	dir := setupCLIEnv(t)
	t.Setenv("RUN_STORE", "sqlite")
	t.Setenv("RUN_STORE_SQLITE_PATH", filepath.Join(dir, "runs.sqlite"))

	out, err := runCLI(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "create_runs")
	assert.Contains(t, out, "no")

	out, err = runCLI(t, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "Applied 1 migration(s)\n", out)

	out, err = runCLI(t, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "Rolled back 1 migration(s)\n", out)
}

func TestMigrate_FileStore(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "migrate", "up")
	assert.ErrorContains(t, err, "RUN_STORE=file")
}
