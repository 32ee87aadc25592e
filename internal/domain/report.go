package domain

import "time"

// Summary holds the per-status tallies of one run.
type Summary struct {
	Total   int        `json:"total"`
	Passed  int        `json:"passed"`
	Failed  int        `json:"failed"`
	Warning int        `json:"warning"`
	Skipped int        `json:"skipped"`
	Overall GateStatus `json:"overall"`
	Glyphs  string     `json:"glyphs"`
}

// FileReport is everything the presentation layer needs after one file run.
type FileReport struct {
	FilePath    string       `json:"file_path"`
	Mode        GateMode     `json:"mode"`
	Source      string       `json:"source"`
	Gates       []GateResult `json:"gates"`
	Summary     Summary      `json:"summary"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	IssueCount  int          `json:"issue_count"`
	Stale       bool         `json:"stale,omitempty"`
	RemoteError string       `json:"remote_error,omitempty"`
	LocalError  string       `json:"local_error,omitempty"`
}

// WorkspaceReport totals a workspace-wide scan.
type WorkspaceReport struct {
	Root        string        `json:"root"`
	Files       []*FileReport `json:"files"`
	TotalFiles  int           `json:"total_files"`
	TotalIssues int           `json:"total_issues"`
}

// RunEntry is one line of local run history.
type RunEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	FilePath   string     `json:"file_path"`
	Mode       GateMode   `json:"mode"`
	Source     string     `json:"source"`
	Overall    GateStatus `json:"overall"`
	Passed     int        `json:"passed"`
	Total      int        `json:"total"`
	Issues     int        `json:"issues"`
	Glyphs     string     `json:"glyphs"`
	CommitHash string     `json:"commit_hash,omitempty"`
}
