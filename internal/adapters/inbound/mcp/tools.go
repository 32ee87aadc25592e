package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/choidage/daker/internal/domain"
)

// registerTools registers all vibex MCP tools on the given server.
func registerTools(s *server.MCPServer, svc Services) {
	// 1. vibex_gate_check
	s.AddTool(
		mcplib.NewTool("vibex_gate_check",
			mcplib.WithDescription("Run the quality gates against one file and return the gate results and diagnostics as JSON"),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path of the file to check"),
			),
			mcplib.WithBoolean("quick", mcplib.Description("Run the pipeline with bypass instead of the lightweight gate-check")),
		),
		handleGateCheck(svc),
	)

	// 2. vibex_pipeline
	s.AddTool(
		mcplib.NewTool("vibex_pipeline",
			mcplib.WithDescription("Run the full gate pipeline against one file"),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path of the file to check"),
			),
		),
		handlePipeline(svc),
	)

	// 3. vibex_declare_zone
	s.AddTool(
		mcplib.NewTool("vibex_declare_zone",
			mcplib.WithDescription("Declare a work zone so collaborators know which files you are editing"),
			mcplib.WithString("files",
				mcplib.Required(),
				mcplib.Description("Comma-separated file paths"),
			),
			mcplib.WithString("user", mcplib.Description("Author declaring the zone")),
			mcplib.WithString("description", mcplib.Description("What you are working on")),
		),
		handleDeclareZone(svc),
	)

	// 4. vibex_release_zone
	s.AddTool(
		mcplib.NewTool("vibex_release_zone",
			mcplib.WithDescription("Release a previously declared work zone"),
			mcplib.WithString("user", mcplib.Description("Author whose zone to release")),
		),
		handleReleaseZone(svc),
	)

	// 5. vibex_list_zones
	s.AddTool(
		mcplib.NewTool("vibex_list_zones",
			mcplib.WithDescription("List the active work zones"),
		),
		handleListZones(svc),
	)

	// 6. vibex_dashboard
	s.AddTool(
		mcplib.NewTool("vibex_dashboard",
			mcplib.WithDescription("Return the dashboard's aggregate gate status"),
		),
		handleDashboard(svc),
	)

	// 7. vibex_health
	s.AddTool(
		mcplib.NewTool("vibex_health",
			mcplib.WithDescription("Return the project health breakdown"),
		),
		handleHealth(svc),
	)

	// 8. vibex_alerts
	s.AddTool(
		mcplib.NewTool("vibex_alerts",
			mcplib.WithDescription("List monitoring alerts"),
			mcplib.WithBoolean("all", mcplib.Description("Include acknowledged alerts")),
		),
		handleAlerts(svc),
	)

	// 9. vibex_diagnostics
	s.AddTool(
		mcplib.NewTool("vibex_diagnostics",
			mcplib.WithDescription("Return stored diagnostics for one file, or for every file when none is given"),
			mcplib.WithString("file", mcplib.Description("Path of the file")),
		),
		handleDiagnostics(svc),
	)
}

func handleGateCheck(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		mode := domain.ModeGateCheck
		if request.GetBool("quick", false) {
			mode = domain.ModeQuick
		}
		return runCheck(ctx, svc, request, mode)
	}
}

func handlePipeline(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return runCheck(ctx, svc, request, domain.ModePipeline)
	}
}

func runCheck(ctx context.Context, svc Services, request mcplib.CallToolRequest, mode domain.GateMode) (*mcplib.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil || strings.TrimSpace(file) == "" {
		return errorResult(domain.ErrNoFile.Error()), nil
	}

	report, err := svc.Checks.CheckFile(ctx, file, mode)
	if err != nil {
		return errorResult(fmt.Sprintf("check failed: %v", err)), nil
	}
	if err := svc.Checks.Persist(); err != nil {
		svc.Logger.Warnf("saving diagnostics: %v", err)
	}
	return jsonResult(report)
}

func handleDeclareZone(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireString("files")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		files := splitList(raw)
		if len(files) == 0 {
			return errorResult(domain.ErrNoFile.Error()), nil
		}

		res := svc.Zones.DeclareFiles(ctx, files, userOr(request, svc.Author), request.GetString("description", ""))
		if !res.Success {
			return errorResult(res.Message), nil
		}
		return jsonResult(res)
	}
}

func handleReleaseZone(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		user := userOr(request, svc.Author)
		if err := svc.Zones.Release(ctx, user); err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(fmt.Sprintf("Work Zone released for %s", user)), nil
	}
}

func handleListZones(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		zones, err := svc.Zones.List(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if zones == nil {
			zones = []domain.WorkZone{}
		}
		return jsonResult(zones)
	}
}

func handleDashboard(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(svc.Monitor.Snapshot(ctx))
	}
}

func handleHealth(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		h, err := svc.Monitor.Health(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(h)
	}
}

func handleAlerts(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		alerts, err := svc.Monitor.Alerts(ctx, !request.GetBool("all", false))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(alerts)
	}
}

func handleDiagnostics(svc Services) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(diagnosticsFor(svc, request.GetString("file", "")))
	}
}

// diagnosticsFor returns the stored diagnostics of file, or of every
// document when file is empty.
func diagnosticsFor(svc Services, file string) map[string][]domain.Diagnostic {
	engine := svc.Checks.Engine()
	out := map[string][]domain.Diagnostic{}
	if file != "" {
		if abs, err := svc.Checks.Resolve(file); err == nil {
			out[abs] = engine.Get(abs)
			if out[abs] == nil {
				out[abs] = []domain.Diagnostic{}
			}
		}
		return out
	}
	for _, doc := range engine.Documents() {
		out[doc] = engine.Get(doc)
	}
	return out
}

func userOr(request mcplib.CallToolRequest, fallback string) string {
	if u := strings.TrimSpace(request.GetString("user", "")); u != "" {
		return u
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// jsonResult marshals v into a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
