// Package normalize coerces gate results from any transport into the
// canonical domain.GateResult shape.
package normalize

import (
	"fmt"
	"strings"

	"github.com/choidage/daker/internal/domain"
)

const enumPrefix = "gatestatus."

// UnknownStatusError reports a status value outside the four known statuses.
// It is a contract violation by the backend and is never coerced.
type UnknownStatusError struct {
	Value string
	Gate  int
}

func (e *UnknownStatusError) Error() string {
	if e.Gate > 0 {
		return fmt.Sprintf("gate %d: unknown gate status %q", e.Gate, e.Value)
	}
	return fmt.Sprintf("unknown gate status %q", e.Value)
}

func (e *UnknownStatusError) Unwrap() error { return domain.ErrUnknownStatus }

// Status maps a wire status to a GateStatus. Matching is case-insensitive and
// accepts the enum-qualified form "GateStatus.PASSED".
func Status(v string) (domain.GateStatus, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	s = strings.TrimPrefix(s, enumPrefix)
	for _, st := range domain.ValidStatuses {
		if s == string(st) {
			return st, nil
		}
	}
	return "", &UnknownStatusError{Value: v}
}

// Result coerces one raw result. position is its 0-based index in the run
// and numbers the gate when the payload carries no number of its own.
func Result(raw domain.RawGateResult, position int) (domain.GateResult, error) {
	number := position + 1
	switch {
	case raw.GateNumber != nil:
		number = *raw.GateNumber
	case raw.Gate != nil:
		number = *raw.Gate
	}

	status, err := Status(raw.Status)
	if err != nil {
		return domain.GateResult{}, &UnknownStatusError{Value: raw.Status, Gate: number}
	}

	name := raw.GateName
	if name == "" {
		name = raw.Name
	}
	if name == "" {
		name = fmt.Sprintf("Gate %d", number)
	}

	src := raw.Details
	if src == nil {
		src = raw.Issues
	}
	details := make([]string, len(src))
	copy(details, src)

	return domain.GateResult{
		GateNumber: number,
		GateName:   name,
		Status:     status,
		Message:    raw.Message,
		Details:    details,
	}, nil
}

// Results coerces a whole result list, preserving execution order. The
// first unknown status aborts normalization.
func Results(raw []domain.RawGateResult) ([]domain.GateResult, error) {
	out := make([]domain.GateResult, 0, len(raw))
	for i, r := range raw {
		g, err := Result(r, i)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Pipeline normalizes a raw run. The overall status is always recomputed
// from the gates; a transmitted value is kept in Reported so that
// PipelineRunResult.Validate can flag a disagreement.
func Pipeline(run domain.RawRun) (domain.PipelineRunResult, error) {
	gates, err := Results(run.Gates)
	if err != nil {
		return domain.PipelineRunResult{}, err
	}
	result := domain.NewPipelineRunResult(run.FilePath, gates)
	if strings.TrimSpace(run.OverallStatus) != "" {
		reported, err := Status(run.OverallStatus)
		if err != nil {
			return domain.PipelineRunResult{}, err
		}
		result.Reported = reported
	}
	return result, nil
}

// Failure converts a transport failure into the single synthetic result.
func Failure(err error) []domain.GateResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return []domain.GateResult{domain.ErrorResult(msg)}
}
