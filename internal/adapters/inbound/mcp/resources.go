package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources registers all vibex MCP resources on the given server.
func registerResources(s *server.MCPServer, svc Services) {
	// 1. vibex://dashboard - aggregate gate status
	s.AddResource(
		mcplib.NewResource(
			"vibex://dashboard",
			"Dashboard",
			mcplib.WithResourceDescription("Aggregate gate status reported by the dashboard"),
			mcplib.WithMIMEType("application/json"),
		),
		func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
			return jsonResource("vibex://dashboard", svc.Monitor.Snapshot(ctx))
		},
	)

	// 2. vibex://zones - active work zones
	s.AddResource(
		mcplib.NewResource(
			"vibex://zones",
			"Work Zones",
			mcplib.WithResourceDescription("Active work zones declared by collaborators"),
			mcplib.WithMIMEType("application/json"),
		),
		func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
			zones, err := svc.Zones.List(ctx)
			if err != nil {
				return nil, err
			}
			return jsonResource("vibex://zones", zones)
		},
	)

	// 3. vibex://diagnostics/{path} - stored diagnostics of one file
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"vibex://diagnostics/{path}",
			"File Diagnostics",
			mcplib.WithTemplateDescription("Diagnostics stored for a file by its last gate run"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleDiagnosticsResource(svc),
	)
}

func handleDiagnosticsResource(svc Services) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		path := templateArg(request.Params.Arguments["path"])
		if path == "" {
			return nil, fmt.Errorf("file path is required")
		}
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		return jsonResource(request.Params.URI, diagnosticsFor(svc, path))
	}
}

// templateArg extracts a template variable, which mcp-go may deliver as a
// string or a single-element list.
func templateArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
