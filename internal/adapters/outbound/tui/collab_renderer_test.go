package tui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func TestRenderDeclare(t *testing.T) {
	out := tui.RenderDeclare(domain.DeclareResult{Success: true, Message: "Work Zone declared with 1 conflict(s)", Conflicts: []string{"bob: a.py"}})
	assert.Contains(t, out, "Work Zone declared")
	assert.Contains(t, out, "bob: a.py")

	out = tui.RenderDeclare(domain.DeclareResult{Success: false, Message: "server error: 500 Internal Server Error"})
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "500")
}

func TestRenderZones(t *testing.T) {
	assert.Contains(t, tui.RenderZones(nil), "No active work zones.")

	out := tui.RenderZones([]domain.WorkZone{{Author: "alice", Files: []string{"src/a.py"}, Description: "Working on a.py", DeclaredAt: "2026-03-01T10:00:00"}})
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "src/a.py")
	assert.Contains(t, out, "Working on a.py")
	assert.Contains(t, out, "(1)")
}

func TestRenderAlerts_SortsBySeverity(t *testing.T) {
	out := tui.RenderAlerts([]domain.Alert{
		{ID: "a1", Level: "info", Title: "Low activity"},
		{ID: "a2", Level: "critical", Title: "Pass rate dropped", Acknowledged: true},
	})
	assert.Less(t, strings.Index(out, "Pass rate dropped"), strings.Index(out, "Low activity"))
	assert.Contains(t, out, "(ack)")
}

func TestRenderHealth(t *testing.T) {
	assert.Contains(t, tui.RenderHealth(nil), "Health unavailable.")

	out := tui.RenderHealth(&domain.Health{
		Overall:      72,
		GatePassRate: 90,
		TechDebt:     []domain.TechDebtItem{{Gate: 2, Issue: "unused import", Count: 4, Suggestion: "run the linter"}},
	})
	assert.Contains(t, out, "72 / 100")
	assert.Contains(t, out, "Gate pass rate")
	assert.Contains(t, out, "unused import ×4")
	assert.Contains(t, out, "run the linter")
}

func TestRenderDashboard(t *testing.T) {
	out := tui.RenderDashboard(&domain.DashboardSnapshot{Timestamp: "2026-03-01T10:00:00Z"})
	assert.Contains(t, out, "No gate results yet.")

	out = tui.RenderDashboard(&domain.DashboardSnapshot{
		TotalFiles: 12,
		Gates:      []domain.GateResult{{GateNumber: 1, GateName: "Syntax", Status: domain.StatusWarning, Message: "slow"}},
	})
	assert.Contains(t, out, "12 files")
	assert.Contains(t, out, "G1:⚠")
}

func TestRenderPanel_PartialFailure(t *testing.T) {
	out := tui.RenderPanel(&domain.Panel{
		Health: &domain.Health{Overall: 50},
		Errors: map[string]string{"alerts": "connection refused"},
	})
	assert.Contains(t, out, "50 / 100")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "No active work zones.")
}

func TestRenderDiagnostics(t *testing.T) {
	assert.Contains(t, tui.RenderDiagnostics(nil), "No stored diagnostics.")

	out := tui.RenderDiagnostics(map[string][]domain.Diagnostic{
		"/p/b.py": {{Document: "/p/b.py", Severity: domain.SeverityWarning, Message: "[GATE 4] style"}},
		"/p/a.py": {{Document: "/p/a.py", Severity: domain.SeverityInformation, Message: "[GATE 3] skipped"}},
	})
	assert.Less(t, strings.Index(out, "a.py"), strings.Index(out, "b.py"))
	assert.Contains(t, out, "[GATE 4] style")
}
