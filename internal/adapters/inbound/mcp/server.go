package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/choidage/daker/internal/application"
	"github.com/choidage/daker/internal/logging"
)

// Services are the application services the MCP surface exposes.
type Services struct {
	Checks  *application.CheckService
	Zones   *application.WorkZoneService
	Monitor *application.MonitorService
	// Author is the default user for work-zone tools.
	Author string
	Logger *logging.Logger
}

// NewServer creates an MCP server with every vibex tool and resource
// registered.
func NewServer(svc Services, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"vibex",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	svc.Logger = svc.Logger.With("mcp")
	registerTools(s, svc)
	registerResources(s, svc)

	return s
}
