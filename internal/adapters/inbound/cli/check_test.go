package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choidage/daker/internal/domain"
)

func TestCheckCommand_RendersReport(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "check", p.file)
	require.NoError(t, err)
	assert.Contains(t, out, "app.py")
	assert.Contains(t, out, "G4 Review")
	assert.Contains(t, out, "1 issue")
}

func TestCheckCommand_JSON(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "check", p.file, "--json")
	require.NoError(t, err)

	var report domain.FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), "output should be valid JSON")
	assert.Equal(t, domain.ModeQuick, report.Mode)
	assert.Equal(t, "remote", report.Source)
	assert.Equal(t, domain.StatusWarning, report.Summary.Overall)
	assert.Equal(t, "G1:✓ G4:⚠", report.Summary.Glyphs)
}

func TestCheckCommand_NoFile(t *testing.T) {
	p := newProject(t)
	_, err := p.run(t, "check")
	assert.ErrorIs(t, err, domain.ErrNoFile)

	_, err = p.run(t, "check", " ")
	assert.ErrorIs(t, err, domain.ErrNoFile)
}

func TestCheckCommand_GateCheckCIFails(t *testing.T) {
	p := newProject(t)
	_, err := p.run(t, "check", p.file, "--gate-check", "--ci")
	assert.Error(t, err, "CI mode should fail when a gate failed")
}

func TestCheckCommand_CIPassesOnWarning(t *testing.T) {
	p := newProject(t)
	_, err := p.run(t, "check", p.file, "--ci")
	assert.NoError(t, err)
}

func TestPipelineCommand_JSON(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "pipeline", p.file, "--author", "carol", "--json")
	require.NoError(t, err)

	var report domain.FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.ModePipeline, report.Mode)
}

func TestScanCommand_JSON(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "scan", "--json")
	require.NoError(t, err)

	var report domain.WorkspaceReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.TotalFiles, "README.md is not a supported extension")
	assert.Equal(t, 1, report.TotalIssues)
}

func TestScanCommand_UnknownMode(t *testing.T) {
	p := newProject(t)
	_, err := p.run(t, "scan", "--mode", "turbo")
	assert.Error(t, err)
}

func TestDiagnosticsCommand_PersistsBetweenRuns(t *testing.T) {
	p := newProject(t)
	_, err := p.run(t, "check", p.file, "--gate-check")
	require.NoError(t, err)

	out, err := p.run(t, "diagnostics", "--json")
	require.NoError(t, err)
	var docs map[string][]domain.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs[p.file], 1)
	assert.Equal(t, "[GATE 2] L3: bad name", docs[p.file][0].Message)
	assert.Equal(t, 2, docs[p.file][0].Range.Start.Line)

	_, err = p.run(t, "diagnostics", "clear")
	require.NoError(t, err)

	out, err = p.run(t, "diagnostics")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored diagnostics.")
}

func TestHistoryCommand(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "history", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	_, err = p.run(t, "check", p.file)
	require.NoError(t, err)

	out, err = p.run(t, "history", "--json")
	require.NoError(t, err)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, p.file, entries[0].FilePath)
	assert.Equal(t, "G1:✓ G4:⚠", entries[0].Glyphs)
}

func TestCheckCommand_RelativeFileUsesProjectPath(t *testing.T) {
	p := newProject(t)
	t.Chdir(t.TempDir())

	out, err := p.run(t, "check", "app.py", "--gate-check", "--json")
	require.NoError(t, err)
	var report domain.FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, p.file, report.FilePath)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, 2, report.Diagnostics[0].Range.Start.Line)

	out, err = p.run(t, "history", "app.py", "--json")
	require.NoError(t, err)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 1)

	out, err = p.run(t, "history", "other.py", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
