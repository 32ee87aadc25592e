package domain

import (
	"context"
	"fmt"
)

// RawGateResult is the tolerant wire shape of a gate result. Backend surfaces
// disagree on field names, so both families are accepted and reconciled by
// the normalizer.
type RawGateResult struct {
	GateNumber *int     `json:"gate_number,omitempty"`
	Gate       *int     `json:"gate,omitempty"`
	GateName   string   `json:"gate_name,omitempty"`
	Name       string   `json:"name,omitempty"`
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Details    []string `json:"details"`
	Issues     []string `json:"issues,omitempty"`
}

// RawRun is what a gate transport hands back before normalization.
type RawRun struct {
	FilePath      string
	OverallStatus string
	Gates         []RawGateResult
}

// GateRunner executes gates for one file over some transport.
type GateRunner interface {
	RunGates(ctx context.Context, req GateRequest) (*RawRun, error)
}

// DeclareResponse is the dashboard's answer to a work-zone declaration.
type DeclareResponse struct {
	Status    string       `json:"status"`
	Conflicts ConflictList `json:"conflicts,omitempty"`
}

// WorkZoneAPI is the remote work-zone registry.
type WorkZoneAPI interface {
	Declare(ctx context.Context, author string, files []string, description string) (*DeclareResponse, error)
	Release(ctx context.Context, author string) error
	List(ctx context.Context) ([]WorkZone, error)
}

// MonitorAPI is the dashboard's display-only monitoring surface.
type MonitorAPI interface {
	Dashboard(ctx context.Context) (*DashboardSnapshot, error)
	Health(ctx context.Context) (*Health, error)
	Alerts(ctx context.Context, activeOnly bool) ([]Alert, error)
	EvaluateAlerts(ctx context.Context) (int, error)
	AcknowledgeAlert(ctx context.Context, alertID string) (bool, error)
}

// ServerStatusError is returned by remote adapters for non-2xx responses.
type ServerStatusError struct {
	Code   int
	Status string
}

func (e *ServerStatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("server error: %s", e.Status)
	}
	return fmt.Sprintf("server error: %d", e.Code)
}

// DocumentReader reports the current length of a document.
type DocumentReader interface {
	LineCount(path string) (int, error)
}

// ScanOptions restricts which workspace files are considered.
type ScanOptions struct {
	Extensions []string
	IgnoreDirs []string
}

// ScanResult holds the result of scanning a workspace directory.
type ScanResult struct {
	RootPath string   `json:"root_path"`
	Files    []string `json:"files"`
}

// WorkspaceScanner lists the checkable files of a workspace.
type WorkspaceScanner interface {
	Scan(root string, opts ScanOptions) (*ScanResult, error)
}

// GitInfo exposes the bits of repository state the client uses.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	Author(projectPath string) (string, error)
	ChangedFiles(projectPath string) ([]string, error)
}

// RunHistory persists local run entries.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
	LoadFile(projectPath, filePath string) ([]RunEntry, error)
}

// DiagnosticStore persists diagnostic snapshots between host sessions.
type DiagnosticStore interface {
	Load(projectPath string) (*DiagnosticSnapshot, error)
	Save(projectPath string, snapshot *DiagnosticSnapshot) error
	Invalidate(projectPath string) error
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (Config, error)
}
