package domain

import (
	"errors"
	"fmt"
)

// GateStatus is the verdict of a single quality gate.
type GateStatus string

const (
	StatusPassed  GateStatus = "passed"
	StatusFailed  GateStatus = "failed"
	StatusWarning GateStatus = "warning"
	StatusSkipped GateStatus = "skipped"
)

// ValidStatuses enumerates every status the backend may report.
var ValidStatuses = []GateStatus{StatusPassed, StatusFailed, StatusWarning, StatusSkipped}

// ErrorGateName is the gate name of the synthetic transport-failure result.
const ErrorGateName = "Error"

var (
	// ErrUnknownStatus marks a status value outside ValidStatuses.
	ErrUnknownStatus = errors.New("unknown gate status")
	// ErrOverallMismatch is reported when a transmitted overall status
	// disagrees with the one recomputed from the gates.
	ErrOverallMismatch = errors.New("overall status mismatch")
	// ErrNoFile is returned when a command needs a file and none was given.
	ErrNoFile = errors.New("no file selected")
)

// GateResult is one outcome of one gate applied to one file.
type GateResult struct {
	GateNumber int        `json:"gate_number"`
	GateName   string     `json:"gate_name"`
	Status     GateStatus `json:"status"`
	Message    string     `json:"message"`
	Details    []string   `json:"details"`
}

// IsError reports whether r is the synthetic transport-failure placeholder.
func (r GateResult) IsError() bool {
	return r.GateNumber == 0 && r.GateName == ErrorGateName
}

// ErrorResult builds the synthetic result used in place of real gates when
// every transport failed.
func ErrorResult(message string) GateResult {
	if message == "" {
		message = "Gate execution failed"
	}
	return GateResult{
		GateNumber: 0,
		GateName:   ErrorGateName,
		Status:     StatusSkipped,
		Message:    message,
		Details:    []string{},
	}
}

// OverallOf returns the worst status among gates with failed > warning >
// passed precedence. Skipped gates never change the outcome.
func OverallOf(gates []GateResult) GateStatus {
	overall := StatusPassed
	for _, g := range gates {
		switch g.Status {
		case StatusFailed:
			return StatusFailed
		case StatusWarning:
			overall = StatusWarning
		}
	}
	return overall
}

// PipelineRunResult is the result of running every gate against one file.
type PipelineRunResult struct {
	FilePath      string       `json:"file_path"`
	OverallStatus GateStatus   `json:"overall_status"`
	Gates         []GateResult `json:"gates"`

	// Reported is the overall status as transmitted by the backend, if any.
	Reported GateStatus `json:"-"`
}

// NewPipelineRunResult derives the overall status from gates.
func NewPipelineRunResult(filePath string, gates []GateResult) PipelineRunResult {
	return PipelineRunResult{
		FilePath:      filePath,
		OverallStatus: OverallOf(gates),
		Gates:         gates,
	}
}

// Validate checks that the transmitted overall status, when present, matches
// the one recomputed from the gates.
func (p PipelineRunResult) Validate() error {
	want := OverallOf(p.Gates)
	if p.OverallStatus != want {
		return fmt.Errorf("%w: stored %q, gates give %q", ErrOverallMismatch, p.OverallStatus, want)
	}
	if p.Reported != "" && p.Reported != want {
		return fmt.Errorf("%w: backend reported %q, gates give %q", ErrOverallMismatch, p.Reported, want)
	}
	return nil
}

// GateMode selects which backend surface a gate request targets.
type GateMode string

const (
	// ModeGateCheck uses the lightweight gate-check endpoint.
	ModeGateCheck GateMode = "gate-check"
	// ModeQuick runs the pipeline with bypass enabled.
	ModeQuick GateMode = "quick"
	// ModePipeline runs the full pipeline.
	ModePipeline GateMode = "pipeline"
)

// Bypass reports whether requests in this mode carry bypass=true. The flag is
// passed through opaquely; the backend decides which gates it affects.
func (m GateMode) Bypass() bool { return m == ModeQuick }

// GateRequest describes one gate invocation for one file.
type GateRequest struct {
	FilePath string
	Author   string
	Mode     GateMode
}
